package application

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
	"roombuddy/domain"
	apperrors "roombuddy/errors"
)

type RoommateService struct {
	store  domain.RoommateStore
	users  domain.UserStore
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewRoommateService(store domain.RoommateStore, users domain.UserStore, tracer trace.Tracer, logger *logrus.Logger) *RoommateService {
	return &RoommateService{
		store:  store,
		users:  users,
		tracer: tracer,
		logger: logger,
	}
}

func (service *RoommateService) Search(ctx context.Context, params *domain.RoommateSearchParams) (*domain.RoommatePage, error) {
	ctx, span := service.tracer.Start(ctx, "RoommateService.Search")
	defer span.End()

	if params.Page < 1 {
		params.Page = 1
	}
	roommates, total, err := service.store.Search(ctx, params)
	if err != nil {
		return nil, storeError(span, err, apperrors.RoommateNotFound)
	}

	ids := make([]primitive.ObjectID, 0, len(roommates))
	for _, roommate := range roommates {
		ids = append(ids, roommate.User)
	}
	users, err := service.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}

	views := make([]*domain.RoommateView, 0, len(roommates))
	for _, roommate := range roommates {
		view := &domain.RoommateView{Roommate: roommate}
		if user, ok := users[roommate.User]; ok {
			view.User = &domain.UserSummary{ID: user.ID, Name: user.Name}
		}
		// listings never carry a phone number
		view.Redact(nil)
		views = append(views, view)
	}
	return &domain.RoommatePage{
		Roommates:  views,
		Page:       params.Page,
		Pages:      domain.Pages(total),
		TotalCount: total,
	}, nil
}

// Get returns a profile with contact details redacted for viewer, which is
// nil for anonymous callers.
func (service *RoommateService) Get(ctx context.Context, viewer *domain.User, id string) (*domain.RoommateView, error) {
	ctx, span := service.tracer.Start(ctx, "RoommateService.Get")
	defer span.End()

	roommate, err := service.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	users, err := service.users.GetSummaries(ctx, []primitive.ObjectID{roommate.User})
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	view := &domain.RoommateView{Roommate: roommate, User: users[roommate.User]}
	view.Redact(viewer)
	return view, nil
}

func (service *RoommateService) Create(ctx context.Context, caller *domain.User, req *domain.RoommateRequest) (*domain.Roommate, error) {
	ctx, span := service.tracer.Start(ctx, "RoommateService.Create")
	defer span.End()

	_, err := service.store.GetByUser(ctx, caller.ID)
	if err == nil {
		return nil, apperrors.BadRequest(apperrors.RoommateExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, storeError(span, err, apperrors.RoommateNotFound)
	}

	if err := validate(req); err != nil {
		return nil, err
	}
	roommate := req.ToRoommate(caller.ID)
	if err := service.store.Insert(ctx, roommate); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.BadRequest(apperrors.RoommateExists)
		}
		return nil, storeError(span, err, apperrors.RoommateNotFound)
	}
	service.logger.WithField("roommate", roommate.ID.Hex()).Info("roommate profile created")
	return roommate, nil
}

func (service *RoommateService) Update(ctx context.Context, caller *domain.User, id string, update *domain.RoommateUpdate) (*domain.Roommate, error) {
	ctx, span := service.tracer.Start(ctx, "RoommateService.Update")
	defer span.End()

	roommate, err := service.get(ctx, span, id)
	if err != nil {
		return nil, err
	}
	if roommate.User != caller.ID {
		return nil, apperrors.Forbidden(apperrors.RoommateUpdateForbidden)
	}

	merged := update.Merge(roommate)
	if err := validate(merged); err != nil {
		return nil, err
	}
	merged.Apply(roommate)
	if err := service.store.Update(ctx, roommate); err != nil {
		return nil, storeError(span, err, apperrors.RoommateNotFound)
	}
	return roommate, nil
}

func (service *RoommateService) Delete(ctx context.Context, caller *domain.User, id string) error {
	ctx, span := service.tracer.Start(ctx, "RoommateService.Delete")
	defer span.End()

	roommate, err := service.get(ctx, span, id)
	if err != nil {
		return err
	}
	if roommate.User != caller.ID {
		return apperrors.Forbidden(apperrors.RoommateDeleteForbidden)
	}
	if err := service.store.Delete(ctx, roommate.ID); err != nil {
		return storeError(span, err, apperrors.RoommateNotFound)
	}
	return nil
}

func (service *RoommateService) get(ctx context.Context, span trace.Span, id string) (*domain.Roommate, error) {
	oid, err := objectID(id, apperrors.RoommateNotFound)
	if err != nil {
		return nil, err
	}
	roommate, err := service.store.Get(ctx, oid)
	if err != nil {
		return nil, storeError(span, err, apperrors.RoommateNotFound)
	}
	return roommate, nil
}
