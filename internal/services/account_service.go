package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
	"github.com/harentsoaR/booking-api/internal/utils"
)

const errBadCredentials = "Invalid email or password"

// AccountService handles registration, login and the caller's own
// profile.
type AccountService struct {
	store    storage.Store
	hasher   utils.PasswordHasher
	tokens   *utils.TokenService
	bookings *BookingService
	now      Clock
}

func NewAccountService(store storage.Store, hasher utils.PasswordHasher, tokens *utils.TokenService, bookings *BookingService, now Clock) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{store: store, hasher: hasher, tokens: tokens, bookings: bookings, now: now}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a customer account. The role is never taken from the
// request.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.From(err)
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Password:  hash,
		Role:      models.RoleCustomer,
		Phone:     in.Phone,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.From(err)
	}
	log.Printf("User registered: %s", user.ID.Hex())
	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthorized(errBadCredentials)
	}
	if err != nil {
		return nil, apperr.From(err)
	}
	if !s.hasher.CheckPasswordHash(in.Password, user.Password) {
		return nil, apperr.Unauthorized(errBadCredentials)
	}
	return s.issue(user)
}

func (s *AccountService) issue(user models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, User: &user}, nil
}

func (s *AccountService) Profile(ctx context.Context, actor Actor) (*models.User, error) {
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return &user, nil
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor Actor, in UpdateProfileInput) (*models.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationErr(err)
	}
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, storeErr(err, "User not found")
	}
	return &user, nil
}

type UpdatePasswordInput struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (s *AccountService) UpdatePassword(ctx context.Context, actor Actor, in UpdatePasswordInput) error {
	if err := validate.Struct(in); err != nil {
		return validationErr(err)
	}
	user, err := s.store.GetUser(ctx, actor.UserID)
	if err != nil {
		return storeErr(err, "User not found")
	}
	if user.Password, err = s.hasher.HashPassword(in.Password); err != nil {
		return apperr.Internal(err)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return storeErr(err, "User not found")
	}
	log.Printf("Password updated for user %s", user.ID.Hex())
	return nil
}

// MyBookings lists the caller's bookings with their references populated.
func (s *AccountService) MyBookings(ctx context.Context, actor Actor) ([]models.BookingDetail, error) {
	return s.bookings.ListMine(ctx, actor)
}

// SeedAdmin makes sure an admin account with the given email exists.
// An existing account is left as is.
func (s *AccountService) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		log.Println("Admin account already exists, skipping seed.")
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, &admin); err != nil {
		return err
	}
	log.Printf("Admin account seeded: %s", admin.ID.Hex())
	return nil
}
