package handlers

import (
	"context"
	"errors"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/authorization"
	apperrors "roombuddy/errors"
	"roombuddy/service"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware keeps the caller's X-Request-ID or assigns a new one,
// and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func LoggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.WithFields(logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    m.Code,
				"duration":  m.Duration.String(),
				"bytes":     m.Written,
				"requestId": RequestID(r.Context()),
			}).Info("request")
		})
	}
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware is the authentication gate in front of protected routes.
type AuthMiddleware struct {
	users     *application.UserService
	responder *Responder
	tracer    trace.Tracer
}

func NewAuthMiddleware(users *application.UserService, responder *Responder, tracer trace.Tracer) *AuthMiddleware {
	return &AuthMiddleware{users: users, responder: responder, tracer: tracer}
}

// Protect rejects requests without a valid bearer token naming an existing user.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "AuthMiddleware.Protect")
		defer span.End()

		token, err := authorization.BearerToken(r)
		if errors.Is(err, authorization.ErrMissingToken) {
			m.responder.Error(w, r, span, apperrors.Unauthorized(apperrors.NoTokenError))
			return
		}
		if err != nil {
			m.responder.Error(w, r, span, apperrors.Wrap(http.StatusUnauthorized, apperrors.InvalidTokenError, err))
			return
		}
		user, err := m.users.Authenticate(ctx, token)
		if err != nil {
			m.responder.Error(w, r, span, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(authorization.WithUser(r.Context(), user)))
	})
}

// Identify attaches the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := authorization.BearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.users.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(authorization.WithUser(r.Context(), user)))
	})
}
