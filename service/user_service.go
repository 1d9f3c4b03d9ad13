package application

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"net/http"
	"roombuddy/authorization"
	"roombuddy/domain"
	apperrors "roombuddy/errors"
	"strings"
	"time"
)

const (
	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute
)

type UserService struct {
	store    domain.UserStore
	attempts domain.LoginAttemptStore
	tokens   *authorization.TokenManager
	tracer   trace.Tracer
	logger   *logrus.Logger
}

// NewUserService wires the account use cases. attempts may be nil, which
// disables login throttling.
func NewUserService(store domain.UserStore, attempts domain.LoginAttemptStore, tokens *authorization.TokenManager, tracer trace.Tracer, logger *logrus.Logger) *UserService {
	return &UserService{
		store:    store,
		attempts: attempts,
		tokens:   tokens,
		tracer:   tracer,
		logger:   logger,
	}
}

func (service *UserService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Register")
	defer span.End()

	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	_, err := service.store.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperrors.BadRequest(apperrors.UserExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.Internal(err)
	}
	user := &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}
	if err := service.store.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.BadRequest(apperrors.UserExists)
		}
		return nil, storeError(span, err, apperrors.UserNotFound)
	}

	service.logger.WithField("user", user.ID.Hex()).Info("user registered")
	return service.authResponse(span, user)
}

func (service *UserService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Login")
	defer span.End()

	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}
	if service.locked(ctx, req.Email) {
		return nil, apperrors.TooManyRequests(apperrors.TooManyAttempts)
	}

	user, err := service.store.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		service.recordFailure(ctx, req.Email)
		return nil, apperrors.Unauthorized(apperrors.InvalidCredentials)
	}

	service.resetFailures(ctx, req.Email)
	return service.authResponse(span, user)
}

// Authenticate resolves a bearer token to the user it names.
func (service *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	claims, err := service.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.Wrap(http.StatusUnauthorized, apperrors.InvalidTokenError, err)
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Wrap(http.StatusUnauthorized, apperrors.InvalidTokenError, err)
	}
	user, err := service.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperrors.Wrap(http.StatusUnauthorized, apperrors.InvalidTokenError, err)
	}
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	return user, nil
}

func (service *UserService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.Get")
	defer span.End()

	user, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	return user, nil
}

func (service *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.GetAll")
	defer span.End()

	users, err := service.store.GetAll(ctx)
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	return users, nil
}

func (service *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *domain.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := service.tracer.Start(ctx, "UserService.UpdateProfile")
	defer span.End()

	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(span, err, apperrors.UserNotFound)
	}

	if req.Email != "" && req.Email != user.Email {
		other, err := service.store.GetByEmail(ctx, req.Email)
		if err == nil && other.ID != user.ID {
			return nil, apperrors.BadRequest(apperrors.UserExists)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, storeError(span, err, apperrors.UserNotFound)
		}
	}

	if password := req.Apply(user); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, apperrors.Internal(err)
		}
		user.Password = string(hash)
	}

	if err := service.store.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.BadRequest(apperrors.UserExists)
		}
		return nil, storeError(span, err, apperrors.UserNotFound)
	}
	return user, nil
}

func (service *UserService) authResponse(span trace.Span, user *domain.User) (*domain.AuthResponse, error) {
	token, err := service.tokens.Generate(user.ID.Hex())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.Internal(err)
	}
	return domain.NewAuthResponse(token, user), nil
}

// Throttle failures are logged and otherwise ignored: a redis outage must
// not lock everyone out.

func (service *UserService) locked(ctx context.Context, email string) bool {
	if service.attempts == nil {
		return false
	}
	count, err := service.attempts.Count(ctx, email)
	if err != nil {
		service.logger.WithError(err).Warn("login throttle unavailable")
		return false
	}
	return count >= MaxLoginAttempts
}

func (service *UserService) recordFailure(ctx context.Context, email string) {
	if service.attempts == nil {
		return
	}
	count, err := service.attempts.RecordFailure(ctx, email, LoginAttemptWindow)
	if err != nil {
		service.logger.WithError(err).Warn("login throttle unavailable")
		return
	}
	if count >= MaxLoginAttempts {
		service.logger.WithField("email", email).Warn("login locked after repeated failures")
	}
}

func (service *UserService) resetFailures(ctx context.Context, email string) {
	if service.attempts == nil {
		return
	}
	if err := service.attempts.Reset(ctx, email); err != nil {
		service.logger.WithError(err).Warn("login throttle unavailable")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
