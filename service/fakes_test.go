package application

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"roombuddy/domain"
)

var tracer = trace.NewNoopTracerProvider().Tracer("test")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemoryUserStore(users ...*domain.User) *memoryUserStore {
	store := &memoryUserStore{users: map[primitive.ObjectID]*domain.User{}}
	for _, user := range users {
		store.users[user.ID] = user
	}
	return store
}

func (s *memoryUserStore) Get(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memoryUserStore) GetAll(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryUserStore) GetSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := map[primitive.ObjectID]*domain.UserSummary{}
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			summaries[id] = user.Summary()
		}
	}
	return summaries, nil
}

func (s *memoryUserStore) Insert(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memoryUserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// memoryHostelStore ignores search predicates and only pages, newest first.
type memoryHostelStore struct {
	mu      sync.Mutex
	hostels []*domain.Hostel
}

func (s *memoryHostelStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hostel := range s.hostels {
		if hostel.ID == id {
			copied := *hostel
			copied.Reviews = append([]domain.Review(nil), hostel.Reviews...)
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryHostelStore) Search(_ context.Context, params *domain.HostelSearchParams) ([]*domain.Hostel, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append([]*domain.Hostel(nil), s.hostels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	return paginate(sorted, params.Page), int64(len(sorted)), nil
}

func (s *memoryHostelStore) Insert(_ context.Context, hostel *domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hostel.ID = primitive.NewObjectID()
	hostel.CreatedAt = time.Now()
	s.hostels = append(s.hostels, hostel)
	return nil
}

func (s *memoryHostelStore) Update(_ context.Context, hostel *domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.hostels {
		if existing.ID == hostel.ID {
			s.hostels[i] = hostel
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memoryHostelStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.hostels {
		if existing.ID == id {
			s.hostels = append(s.hostels[:i], s.hostels[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memoryHostelStore) AddReview(_ context.Context, hostelID primitive.ObjectID, review domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hostel := range s.hostels {
		if hostel.ID == hostelID {
			if hostel.HasReviewFrom(review.User) {
				return domain.ErrAlreadyReviewed
			}
			hostel.AddReview(review)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memoryRoommateStore struct {
	mu        sync.Mutex
	roommates []*domain.Roommate
}

func (s *memoryRoommateStore) Get(_ context.Context, id primitive.ObjectID) (*domain.Roommate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roommate := range s.roommates {
		if roommate.ID == id {
			copied := *roommate
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryRoommateStore) GetByUser(_ context.Context, userID primitive.ObjectID) (*domain.Roommate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roommate := range s.roommates {
		if roommate.User == userID {
			copied := *roommate
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryRoommateStore) Search(_ context.Context, params *domain.RoommateSearchParams) ([]*domain.Roommate, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make([]*domain.Roommate, 0, len(s.roommates))
	for _, roommate := range s.roommates {
		if roommate.IsActive {
			active = append(active, roommate)
		}
	}
	return paginate(active, params.Page), int64(len(active)), nil
}

func (s *memoryRoommateStore) Insert(_ context.Context, roommate *domain.Roommate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	roommate.ID = primitive.NewObjectID()
	copied := *roommate
	s.roommates = append(s.roommates, &copied)
	return nil
}

func (s *memoryRoommateStore) Update(_ context.Context, roommate *domain.Roommate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.roommates {
		if existing.ID == roommate.ID {
			copied := *roommate
			s.roommates[i] = &copied
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memoryRoommateStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.roommates {
		if existing.ID == id {
			s.roommates = append(s.roommates[:i], s.roommates[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func paginate[T any](items []T, page int) []T {
	start := int(domain.Skip(page))
	if start >= len(items) {
		return []T{}
	}
	end := start + domain.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type memoryAttempts struct {
	counts map[string]int64
}

func newMemoryAttempts() *memoryAttempts {
	return &memoryAttempts{counts: map[string]int64{}}
}

func (a *memoryAttempts) Count(_ context.Context, key string) (int64, error) {
	return a.counts[key], nil
}

func (a *memoryAttempts) RecordFailure(_ context.Context, key string, _ time.Duration) (int64, error) {
	a.counts[key]++
	return a.counts[key], nil
}

func (a *memoryAttempts) Reset(_ context.Context, key string) error {
	delete(a.counts, key)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	reviews []domain.Review
	err     error
}

func (n *recordingNotifier) NotifyReview(_ context.Context, _ *domain.Hostel, review *domain.Review) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviews = append(n.reviews, *review)
	return n.err
}
