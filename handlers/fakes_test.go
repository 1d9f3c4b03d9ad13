package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"

	"roombuddy/authorization"
	"roombuddy/casbinAuthorization"
	"roombuddy/domain"
	"roombuddy/service"
)

var tracer = trace.NewNoopTracerProvider().Tracer("test")

type users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*domain.User
}

func (s *users) Get(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (s *users) GetAll(_ context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*domain.User, 0, len(s.byID))
	for _, user := range s.byID {
		all = append(all, user)
	}
	return all, nil
}

func (s *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *users) GetSummaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := map[primitive.ObjectID]*domain.UserSummary{}
	for _, id := range ids {
		if user, ok := s.byID[id]; ok {
			summaries[id] = user.Summary()
		}
	}
	return summaries, nil
}

func (s *users) Insert(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	copied := *user
	s.byID[user.ID] = &copied
	return nil
}

func (s *users) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.byID[user.ID] = &copied
	return nil
}

// hostels records the last search it was asked for.
type hostels struct {
	mu         sync.Mutex
	items      map[primitive.ObjectID]*domain.Hostel
	lastSearch *domain.HostelSearchParams
}

func (s *hostels) Get(_ context.Context, id primitive.ObjectID) (*domain.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hostel, ok := s.items[id]; ok {
		copied := *hostel
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (s *hostels) Search(_ context.Context, params *domain.HostelSearchParams) ([]*domain.Hostel, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSearch = params
	all := make([]*domain.Hostel, 0, len(s.items))
	for _, hostel := range s.items {
		all = append(all, hostel)
	}
	return all, int64(len(all)), nil
}

func (s *hostels) Insert(_ context.Context, hostel *domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hostel.ID = primitive.NewObjectID()
	hostel.CreatedAt = time.Now()
	copied := *hostel
	s.items[hostel.ID] = &copied
	return nil
}

func (s *hostels) Update(_ context.Context, hostel *domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *hostel
	s.items[hostel.ID] = &copied
	return nil
}

func (s *hostels) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *hostels) AddReview(_ context.Context, hostelID primitive.ObjectID, review domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hostel, ok := s.items[hostelID]
	if !ok {
		return domain.ErrNotFound
	}
	if hostel.HasReviewFrom(review.User) {
		return domain.ErrAlreadyReviewed
	}
	hostel.AddReview(review)
	return nil
}

type roommates struct {
	mu         sync.Mutex
	items      map[primitive.ObjectID]*domain.Roommate
	lastSearch *domain.RoommateSearchParams
}

func (s *roommates) Get(_ context.Context, id primitive.ObjectID) (*domain.Roommate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if roommate, ok := s.items[id]; ok {
		copied := *roommate
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (s *roommates) GetByUser(_ context.Context, userID primitive.ObjectID) (*domain.Roommate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roommate := range s.items {
		if roommate.User == userID {
			copied := *roommate
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *roommates) Search(_ context.Context, params *domain.RoommateSearchParams) ([]*domain.Roommate, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSearch = params
	all := make([]*domain.Roommate, 0, len(s.items))
	for _, roommate := range s.items {
		copied := *roommate
		all = append(all, &copied)
	}
	return all, int64(len(all)), nil
}

func (s *roommates) Insert(_ context.Context, roommate *domain.Roommate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	roommate.ID = primitive.NewObjectID()
	copied := *roommate
	s.items[roommate.ID] = &copied
	return nil
}

func (s *roommates) Update(_ context.Context, roommate *domain.Roommate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *roommate
	s.items[roommate.ID] = &copied
	return nil
}

func (s *roommates) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// testAPI is the /api router over in-memory stores, with one regular user
// and one admin already registered.
type testAPI struct {
	router    http.Handler
	users     *users
	hostels   *hostels
	roommates *roommates
	tokens    *authorization.TokenManager
	member    *domain.User
	admin     *domain.User
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	member := &domain.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com"}
	admin := &domain.User{ID: primitive.NewObjectID(), Name: "Root", Email: "root@example.com", IsAdmin: true}
	api := &testAPI{
		users:     &users{byID: map[primitive.ObjectID]*domain.User{member.ID: member, admin.ID: admin}},
		hostels:   &hostels{items: map[primitive.ObjectID]*domain.Hostel{}},
		roommates: &roommates{items: map[primitive.ObjectID]*domain.Roommate{}},
		member:    member,
		admin:     admin,
	}

	tokens, err := authorization.NewTokenManager("test-secret", authorization.TokenTTL)
	require.NoError(t, err)
	api.tokens = tokens

	enforcer, err := casbinAuthorization.NewEnforcer("../rbac_model.conf", "../policy.csv")
	require.NoError(t, err)

	userService := application.NewUserService(api.users, nil, tokens, tracer, logger)
	hostelService := application.NewHostelService(api.hostels, api.users, application.NewLogNotifier(logger), tracer, logger)
	roommateService := application.NewRoommateService(api.roommates, api.users, tracer, logger)

	responder := NewResponder(logger, true)
	auth := NewAuthMiddleware(userService, responder, tracer)

	router := mux.NewRouter()
	sub := router.PathPrefix("/api").Subrouter()
	NewUserHandler(userService, auth, casbinAuthorization.CasbinMiddleware(enforcer, logger), responder, tracer).Init(sub)
	NewHostelHandler(hostelService, auth, responder, tracer).Init(sub)
	NewRoommateHandler(roommateService, auth, responder, tracer).Init(sub)
	sub.PathPrefix("/").HandlerFunc(NotFound)
	router.PathPrefix("/").Handler(NewClientHandler(false, t.TempDir()))
	api.router = RequestIDMiddleware(router)
	return api
}

func (api *testAPI) token(t *testing.T, user *domain.User) string {
	t.Helper()
	token, err := api.tokens.Generate(user.ID.Hex())
	require.NoError(t, err)
	return token
}

// do sends body as JSON, authenticated as user when user is not nil.
func (api *testAPI) do(t *testing.T, method, path, body string, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	r := newRequest(method, path, body)
	if user != nil {
		r.Header.Set("Authorization", "Bearer "+api.token(t, user))
	}
	return serveRequest(api, r)
}

func newRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func serveRequest(api *testAPI, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, r)
	return w
}
