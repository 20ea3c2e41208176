// Package storage defines persistence contracts for users, specialists,
// services and bookings.
package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/models"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("record already exists")
)

// UserStore persists user identities.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	ListUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// SpecialistStore persists specialist profiles.
type SpecialistStore interface {
	CreateSpecialist(ctx context.Context, specialist *models.Specialist) error
	GetSpecialist(ctx context.Context, id primitive.ObjectID) (models.Specialist, error)
	GetSpecialistByUser(ctx context.Context, userID primitive.ObjectID) (models.Specialist, error)
	UpdateSpecialist(ctx context.Context, specialist models.Specialist) error
	DeleteSpecialist(ctx context.Context, id primitive.ObjectID) error
	ListSpecialists(ctx context.Context) ([]models.Specialist, error)
	ListSpecialistsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Specialist, error)
}

// ServiceFilter narrows a service listing. A nil Active matches both.
type ServiceFilter struct {
	Active *bool
}

// ServiceStore persists the service catalogue. Listings are sorted by
// title ascending.
type ServiceStore interface {
	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id primitive.ObjectID) (models.Service, error)
	UpdateService(ctx context.Context, service models.Service) error
	DeleteService(ctx context.Context, id primitive.ObjectID) error
	ListServices(ctx context.Context, filter ServiceFilter) ([]models.Service, error)
	ListServicesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error)
}

// BookingSort selects the ordering of a booking listing.
type BookingSort int

const (
	// SortServiceDateDesc lists the most recent service dates first.
	SortServiceDateDesc BookingSort = iota
	// SortStartTimeAsc lists bookings in start order.
	SortStartTimeAsc
)

// BookingFilter narrows a booking listing. Zero fields match everything.
type BookingFilter struct {
	UserID       primitive.ObjectID
	SpecialistID primitive.ObjectID
	ServiceDate  time.Time
	Status       models.BookingStatus
	Sort         BookingSort
}

// BookingStore persists bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id primitive.ObjectID) (models.Booking, error)
	UpdateBooking(ctx context.Context, booking models.Booking) error
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	// DeleteBookingsBySpecialist removes every booking of a specialist
	// profile and reports how many were removed.
	DeleteBookingsBySpecialist(ctx context.Context, specialistID primitive.ObjectID) (int64, error)
	// CompleteElapsedBookings flips every booked booking whose end is
	// before now to completed and reports how many changed.
	CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error)
	// LockSpecialistDay claims the (specialist, date) schedule inside the
	// current unit of work so that concurrent units touching the same day
	// cannot both commit.
	LockSpecialistDay(ctx context.Context, specialistID primitive.ObjectID, serviceDate time.Time) error
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	SpecialistStore
	ServiceStore
	BookingStore

	// WithinTx runs fn as one unit of work: every write made through the
	// ctx passed to fn commits together or not at all. fn may be invoked
	// more than once when the backend retries a transient conflict, so it
	// must not have side effects outside the store.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close(ctx context.Context) error
}
