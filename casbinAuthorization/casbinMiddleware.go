package casbinAuthorization

import (
	"encoding/json"
	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"
	"net/http"
	"roombuddy/authorization"
	"roombuddy/errors"
)

func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcerSafe(modelPath, policyPath)
}

// CasbinMiddleware lets a request through when the caller's role may perform
// the method on the path. It must run after the authentication gate.
func CasbinMiddleware(e *casbin.Enforcer, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			user := authorization.UserFromContext(r.Context())
			if user == nil {
				deny(w, http.StatusUnauthorized, errors.NoTokenError)
				return
			}

			res, err := e.EnforceSafe(user.Role(), r.URL.Path, r.Method)
			if err != nil {
				logger.WithError(err).Error("casbin enforce failed")
				deny(w, http.StatusInternalServerError, errors.InternalServerError)
				return
			}
			if !res {
				logger.WithFields(logrus.Fields{
					"user": user.ID.Hex(),
					"path": r.URL.Path,
				}).Warn("admin route denied")
				deny(w, http.StatusForbidden, errors.NotAdminError)
				return
			}
			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
