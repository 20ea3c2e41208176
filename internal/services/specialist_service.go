package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
	"github.com/harentsoaR/booking-api/internal/utils"
)

// resolveSpecialist accepts either a profile id or the id of the user
// behind the profile and returns the profile.
func resolveSpecialist(ctx context.Context, store storage.SpecialistStore, ref string) (models.Specialist, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(ref))
	if err != nil {
		return models.Specialist{}, apperr.NotFound(errSpecialistGone)
	}
	specialist, err := store.GetSpecialist(ctx, id)
	if err == nil {
		return specialist, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Specialist{}, apperr.From(err)
	}
	specialist, err = store.GetSpecialistByUser(ctx, id)
	if err != nil {
		return models.Specialist{}, storeErr(err, errSpecialistGone)
	}
	return specialist, nil
}

// SpecialistService provisions specialist profiles together with their
// user accounts.
type SpecialistService struct {
	store  storage.Store
	hasher utils.PasswordHasher
	now    Clock
}

func NewSpecialistService(store storage.Store, hasher utils.PasswordHasher, now Clock) *SpecialistService {
	if now == nil {
		now = time.Now
	}
	return &SpecialistService{store: store, hasher: hasher, now: now}
}

func (s *SpecialistService) List(ctx context.Context) ([]models.SpecialistDetail, error) {
	specialists, err := s.store.ListSpecialists(ctx)
	if err != nil {
		return nil, apperr.From(err)
	}
	details, err := populateSpecialists(ctx, s.store, specialists)
	if err != nil {
		return nil, apperr.From(err)
	}
	return details, nil
}

// Get looks a specialist up by profile id or user id.
func (s *SpecialistService) Get(ctx context.Context, ref string) (*models.SpecialistDetail, error) {
	specialist, err := resolveSpecialist(ctx, s.store, ref)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, specialist)
}

func (s *SpecialistService) detail(ctx context.Context, specialist models.Specialist) (*models.SpecialistDetail, error) {
	details, err := populateSpecialists(ctx, s.store, []models.Specialist{specialist})
	if err != nil {
		return nil, apperr.From(err)
	}
	return &details[0], nil
}

type CreateSpecialistInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Phone           string `json:"phone"`
	Description     string `json:"description" validate:"required"`
	Class           string `json:"class" validate:"required"`
	YearsExperience *int   `json:"yearsExperience" validate:"required,min=0"`
}

// Create adds a user with role specialist and its profile as one unit of
// work.
func (s *SpecialistService) Create(ctx context.Context, in CreateSpecialistInput) (*models.SpecialistDetail, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var specialist models.Specialist
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
			return apperr.Conflict("User already exists")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		user := models.User{
			Name:      strings.TrimSpace(in.Name),
			Email:     strings.TrimSpace(in.Email),
			Password:  hash,
			Role:      models.RoleSpecialist,
			Phone:     in.Phone,
			CreatedAt: s.now().UTC(),
		}
		if err := s.store.CreateUser(ctx, &user); err != nil {
			return err
		}
		specialist = models.Specialist{
			User:            user.ID,
			Description:     in.Description,
			Class:           in.Class,
			YearsExperience: *in.YearsExperience,
		}
		return s.store.CreateSpecialist(ctx, &specialist)
	})
	if err != nil {
		return nil, storeErr(err, errSpecialistGone)
	}
	log.Printf("Specialist %s provisioned for user %s", specialist.ID.Hex(), specialist.User.Hex())
	return s.detail(ctx, specialist)
}

// UpdateSpecialistInput changes the profile and the backing user. Nil
// fields are left untouched.
type UpdateSpecialistInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        *string `json:"password" validate:"omitempty,min=6"`
	Phone           *string `json:"phone"`
	Description     *string `json:"description"`
	Class           *string `json:"class"`
	YearsExperience *int    `json:"yearsExperience" validate:"omitempty,min=0"`
}

func (s *SpecialistService) Update(ctx context.Context, ref string, in UpdateSpecialistInput) (*models.SpecialistDetail, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	var hash string
	if in.Password != nil {
		var err error
		if hash, err = s.hasher.HashPassword(*in.Password); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	var specialist models.Specialist
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if specialist, err = resolveSpecialist(ctx, s.store, ref); err != nil {
			return err
		}
		if in.Description != nil {
			specialist.Description = *in.Description
		}
		if in.Class != nil {
			specialist.Class = *in.Class
		}
		if in.YearsExperience != nil {
			specialist.YearsExperience = *in.YearsExperience
		}
		if err := s.store.UpdateSpecialist(ctx, specialist); err != nil {
			return err
		}

		if in.Name == nil && in.Email == nil && in.Phone == nil && hash == "" {
			return nil
		}
		user, err := s.store.GetUser(ctx, specialist.User)
		if err != nil {
			return storeErr(err, "User not found")
		}
		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			user.Email = strings.TrimSpace(*in.Email)
		}
		if in.Phone != nil {
			user.Phone = *in.Phone
		}
		if hash != "" {
			user.Password = hash
		}
		return s.store.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, storeErr(err, errSpecialistGone)
	}
	return s.detail(ctx, specialist)
}

// Delete removes the specialist's bookings, the profile and the user, all
// or nothing.
func (s *SpecialistService) Delete(ctx context.Context, ref string) error {
	var removed int64
	var specialist models.Specialist
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if specialist, err = resolveSpecialist(ctx, s.store, ref); err != nil {
			return err
		}
		if removed, err = s.store.DeleteBookingsBySpecialist(ctx, specialist.ID); err != nil {
			return err
		}
		if err := s.store.DeleteSpecialist(ctx, specialist.ID); err != nil {
			return err
		}
		err = s.store.DeleteUser(ctx, specialist.User)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return storeErr(err, errSpecialistGone)
	}
	log.Printf("Specialist %s deleted along with %d booking(s)", specialist.ID.Hex(), removed)
	return nil
}
