// Package services holds the booking rules and the account, catalogue and
// specialist operations the HTTP handlers call.
package services

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

// Clock returns the current instant. Tests pin it.
type Clock func() time.Time

var validate = newValidator()

// newValidator reports field names by their JSON tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// NewActor builds an actor from token claims.
func NewActor(userID, role string) (Actor, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return Actor{}, apperr.Unauthorized("Invalid token")
	}
	return Actor{UserID: id, Role: models.Role(role)}, nil
}

// ParseID parses a hex object id, reporting a validation error naming
// the kind of record.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + what + " id")
	}
	return id, nil
}

// storeErr maps storage sentinels to caller-facing errors.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, storage.ErrDuplicate):
		return &apperr.Error{Kind: apperr.KindConflict, Message: "Record already exists", Err: err}
	default:
		return apperr.From(err)
	}
}

// validationErr turns validator output into a single readable message.
func validationErr(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid request")
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field + " is required")
	case "email":
		return apperr.Validation(field + " must be a valid email")
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return apperr.Validation(field + " must be at least " + fe.Param() + " characters")
		}
		return apperr.Validation(field + " cannot be less than " + fe.Param())
	default:
		return apperr.Validation(field + " is invalid")
	}
}
