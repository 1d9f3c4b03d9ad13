package application

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"roombuddy/domain"
	apperrors "roombuddy/errors"
	"time"
)

type HostelService struct {
	store    domain.HostelStore
	users    domain.UserStore
	notifier domain.ReviewNotifier
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewHostelService(store domain.HostelStore, users domain.UserStore, notifier domain.ReviewNotifier, tracer trace.Tracer, logger *logrus.Logger) *HostelService {
	return &HostelService{
		store:    store,
		users:    users,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
	}
}

func (service *HostelService) Search(ctx context.Context, params *domain.HostelSearchParams) (*domain.HostelPage, error) {
	ctx, span := service.tracer.Start(ctx, "HostelService.Search")
	defer span.End()

	if params.Page < 1 {
		params.Page = 1
	}
	hostels, total, err := service.store.Search(ctx, params)
	if err != nil {
		return nil, storeError(span, err, apperrors.HostelNotFound)
	}

	ids := make([]primitive.ObjectID, 0, len(hostels))
	for _, hostel := range hostels {
		ids = append(ids, hostel.Owner)
	}
	owners, err := service.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}

	views := make([]*domain.HostelView, 0, len(hostels))
	for _, hostel := range hostels {
		view := &domain.HostelView{Hostel: hostel}
		if owner, ok := owners[hostel.Owner]; ok {
			view.Owner = &domain.UserSummary{ID: owner.ID, Name: owner.Name}
		}
		views = append(views, view)
	}
	return &domain.HostelPage{
		Hostels:    views,
		Page:       params.Page,
		Pages:      domain.Pages(total),
		TotalCount: total,
	}, nil
}

func (service *HostelService) Get(ctx context.Context, id string) (*domain.HostelView, error) {
	ctx, span := service.tracer.Start(ctx, "HostelService.Get")
	defer span.End()

	hostel, err := service.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	view := &domain.HostelView{Hostel: hostel}
	owners, err := service.users.GetSummaries(ctx, []primitive.ObjectID{hostel.Owner})
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	view.Owner = owners[hostel.Owner]
	return view, nil
}

func (service *HostelService) Create(ctx context.Context, owner *domain.User, req *domain.HostelRequest) (*domain.Hostel, error) {
	ctx, span := service.tracer.Start(ctx, "HostelService.Create")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}
	hostel := req.ToHostel(owner.ID)
	if err := service.store.Insert(ctx, hostel); err != nil {
		return nil, storeError(span, err, apperrors.HostelNotFound)
	}
	service.logger.WithFields(logrus.Fields{
		"hostel": hostel.ID.Hex(),
		"owner":  owner.ID.Hex(),
	}).Info("hostel created")
	return hostel, nil
}

func (service *HostelService) Update(ctx context.Context, caller *domain.User, id string, update *domain.HostelUpdate) (*domain.Hostel, error) {
	ctx, span := service.tracer.Start(ctx, "HostelService.Update")
	defer span.End()

	hostel, err := service.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	if hostel.Owner != caller.ID {
		return nil, apperrors.Forbidden(apperrors.HostelUpdateForbidden)
	}

	merged := update.Merge(hostel)
	if err := validate(merged); err != nil {
		return nil, err
	}
	merged.Apply(hostel)
	if err := service.store.Update(ctx, hostel); err != nil {
		return nil, storeError(span, err, apperrors.HostelNotFound)
	}
	return hostel, nil
}

func (service *HostelService) Delete(ctx context.Context, caller *domain.User, id string) error {
	ctx, span := service.tracer.Start(ctx, "HostelService.Delete")
	defer span.End()

	hostel, err := service.get(ctx, span, id)
	if err != nil {
		return err
	}
	if hostel.Owner != caller.ID {
		return apperrors.Forbidden(apperrors.HostelDeleteForbidden)
	}
	if err := service.store.Delete(ctx, hostel.ID); err != nil {
		return storeError(span, err, apperrors.HostelNotFound)
	}
	service.logger.WithField("hostel", hostel.ID.Hex()).Info("hostel removed")
	return nil
}

// AddReview stores the caller's review. The duplicate check on the loaded
// document gives the common case a clear answer; the store repeats it inside
// the write so concurrent submissions cannot slip past it.
func (service *HostelService) AddReview(ctx context.Context, caller *domain.User, id string, req *domain.ReviewRequest) error {
	ctx, span := service.tracer.Start(ctx, "HostelService.AddReview")
	defer span.End()

	if err := validate(req); err != nil {
		return err
	}
	hostel, err := service.get(ctx, span, id)
	if err != nil {
		return err
	}
	if hostel.HasReviewFrom(caller.ID) {
		return apperrors.BadRequest(apperrors.AlreadyReviewed)
	}

	review := req.ToReview(caller, time.Now().UTC())
	err = service.store.AddReview(ctx, hostel.ID, review)
	if errors.Is(err, domain.ErrAlreadyReviewed) {
		return apperrors.BadRequest(apperrors.AlreadyReviewed)
	}
	if err != nil {
		return storeError(span, err, apperrors.HostelNotFound)
	}

	if err := service.notifier.NotifyReview(ctx, hostel, &review); err != nil {
		service.logger.WithError(err).WithField("hostel", hostel.ID.Hex()).Warn("review notification failed")
	}
	return nil
}

func (service *HostelService) get(ctx context.Context, span trace.Span, id string) (*domain.Hostel, error) {
	oid, err := objectID(id, apperrors.HostelNotFound)
	if err != nil {
		return nil, err
	}
	hostel, err := service.store.Get(ctx, oid)
	if err != nil {
		return nil, storeError(span, err, apperrors.HostelNotFound)
	}
	return hostel, nil
}
