package application

import (
	"errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"net/http"
	"roombuddy/domain"
	apperrors "roombuddy/errors"
)

func validate(request interface{}) error {
	err := domain.Validate(request)
	if err == nil {
		return nil
	}
	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) {
		return apperrors.Wrap(http.StatusBadRequest, fieldErr.Error(), err)
	}
	return apperrors.Wrap(http.StatusBadRequest, apperrors.InvalidRequestFormatError, err)
}

// objectID parses a path id. An id that cannot exist is reported the same
// way as one that does not.
func objectID(id string, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound(notFound)
	}
	return oid, nil
}

// storeError maps store sentinels onto client errors and records anything
// else on the span.
func storeError(span trace.Span, err error, notFound string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperrors.Wrap(http.StatusNotFound, notFound, err)
	}
	span.SetStatus(codes.Error, err.Error())
	return apperrors.Internal(err)
}
