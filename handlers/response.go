package handlers

import (
	"encoding/json"
	"fmt"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/errors"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Responder writes JSON payloads and maps errors onto status codes. In
// development internal errors also carry their wrapped chain as "stack".
type Responder struct {
	logger      *logrus.Logger
	development bool
}

func NewResponder(logger *logrus.Logger, development bool) *Responder {
	return &Responder{logger: logger, development: development}
}

func jsonResponse(object interface{}, w http.ResponseWriter) {
	jsonResponseWithStatus(object, http.StatusOK, w)
}

func jsonResponseWithStatus(object interface{}, status int, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(object); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

func (responder *Responder) Error(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	status := errors.Status(err)
	body := ErrorResponse{Message: errors.Message(err)}

	fields := logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    status,
		"requestId": RequestID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
		responder.logger.WithFields(fields).WithError(err).Error("request failed")
		if responder.development {
			body.Stack = fmt.Sprintf("%+v", err)
		}
	} else {
		responder.logger.WithFields(fields).Debug(body.Message)
	}
	jsonResponseWithStatus(body, status, w)
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.BadRequest(errors.InvalidRequestFormatError)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(http.StatusBadRequest, errors.InvalidRequestFormatError, err)
	}
	return nil
}
