// Package memstore implements storage.Store in process memory. Units of
// work are serialised with every other write and roll back by restoring a
// snapshot.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

type txKey struct{}

type state struct {
	users       map[primitive.ObjectID]models.User
	specialists map[primitive.ObjectID]models.Specialist
	services    map[primitive.ObjectID]models.Service
	bookings    map[primitive.ObjectID]models.Booking
}

func newState() state {
	return state{
		users:       make(map[primitive.ObjectID]models.User),
		specialists: make(map[primitive.ObjectID]models.Specialist),
		services:    make(map[primitive.ObjectID]models.Service),
		bookings:    make(map[primitive.ObjectID]models.Booking),
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.specialists {
		out.specialists[k] = v
	}
	for k, v := range s.services {
		out.services[k] = v
	}
	for k, v := range s.bookings {
		out.bookings[k] = v
	}
	return out
}

// Store is an in-memory storage.Store.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// exclusive keeps a write made outside a unit of work from interleaving
// with an open unit, whose rollback would otherwise undo it.
func (s *Store) exclusive(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) Close(context.Context) error { return nil }

// LockSpecialistDay is a no-op: units of work already run one at a time.
func (s *Store) LockSpecialistDay(context.Context, primitive.ObjectID, time.Time) error {
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, existing := range s.data.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: email %s", storage.ErrDuplicate, user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, ok := s.data.users[user.ID]; ok {
		return fmt.Errorf("%w: user %s", storage.ErrDuplicate, user.ID.Hex())
	}
	s.data.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.data.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.data.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	user.Email = strings.ToLower(user.Email)
	for id, existing := range s.data.users {
		if id != user.ID && existing.Email == user.Email {
			return fmt.Errorf("%w: email %s", storage.ErrDuplicate, user.Email)
		}
	}
	s.data.users[user.ID] = user
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.users, id)
	return nil
}

func (s *Store) ListUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pick(s.data.users, ids), nil
}

// Specialists

func (s *Store) CreateSpecialist(ctx context.Context, specialist *models.Specialist) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.specialists {
		if existing.User == specialist.User {
			return fmt.Errorf("%w: specialist for user %s", storage.ErrDuplicate, specialist.User.Hex())
		}
	}
	if specialist.ID.IsZero() {
		specialist.ID = primitive.NewObjectID()
	}
	s.data.specialists[specialist.ID] = *specialist
	return nil
}

func (s *Store) GetSpecialist(_ context.Context, id primitive.ObjectID) (models.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	specialist, ok := s.data.specialists[id]
	if !ok {
		return models.Specialist{}, storage.ErrNotFound
	}
	return specialist, nil
}

func (s *Store) GetSpecialistByUser(_ context.Context, userID primitive.ObjectID) (models.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, specialist := range s.data.specialists {
		if specialist.User == userID {
			return specialist, nil
		}
	}
	return models.Specialist{}, storage.ErrNotFound
}

func (s *Store) UpdateSpecialist(ctx context.Context, specialist models.Specialist) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.specialists[specialist.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.specialists[specialist.ID] = specialist
	return nil
}

func (s *Store) DeleteSpecialist(ctx context.Context, id primitive.ObjectID) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.specialists[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.specialists, id)
	return nil
}

func (s *Store) ListSpecialists(_ context.Context) ([]models.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Specialist, 0, len(s.data.specialists))
	for _, specialist := range s.data.specialists {
		out = append(out, specialist)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *Store) ListSpecialistsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Specialist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pick(s.data.specialists, ids), nil
}

// Services

func (s *Store) CreateService(ctx context.Context, service *models.Service) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	s.data.services[service.ID] = *service
	return nil
}

func (s *Store) GetService(_ context.Context, id primitive.ObjectID) (models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.data.services[id]
	if !ok {
		return models.Service{}, storage.ErrNotFound
	}
	return service, nil
}

func (s *Store) UpdateService(ctx context.Context, service models.Service) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.services[service.ID]; !ok {
		return storage.ErrNotFound
	}
	s.data.services[service.ID] = service
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id primitive.ObjectID) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.services[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.services, id)
	return nil
}

func (s *Store) ListServices(_ context.Context, filter storage.ServiceFilter) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Service, 0, len(s.data.services))
	for _, service := range s.data.services {
		if filter.Active != nil && service.IsActive != *filter.Active {
			continue
		}
		out = append(out, service)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) ListServicesByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pick(s.data.services, ids), nil
}

// Bookings

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	if err := s.checkBookedSlot(*booking); err != nil {
		return err
	}
	s.data.bookings[booking.ID] = *booking
	return nil
}

func (s *Store) GetBooking(_ context.Context, id primitive.ObjectID) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.data.bookings[id]
	if !ok {
		return models.Booking{}, storage.ErrNotFound
	}
	return booking, nil
}

func (s *Store) UpdateBooking(ctx context.Context, booking models.Booking) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.bookings[booking.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := s.checkBookedSlot(booking); err != nil {
		return err
	}
	s.data.bookings[booking.ID] = booking
	return nil
}

// checkBookedSlot mirrors the unique partial index on booked
// (specialist, serviceDate, startTime).
func (s *Store) checkBookedSlot(booking models.Booking) error {
	if booking.Status != models.StatusBooked {
		return nil
	}
	for id, existing := range s.data.bookings {
		if id == booking.ID || existing.Status != models.StatusBooked {
			continue
		}
		if existing.Specialist == booking.Specialist &&
			existing.ServiceDate.Equal(booking.ServiceDate) &&
			existing.StartTime.Equal(booking.StartTime) {
			return fmt.Errorf("%w: booked slot %s", storage.ErrDuplicate, booking.StartTime.Format(time.RFC3339))
		}
	}
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.bookings[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.bookings, id)
	return nil
}

func (s *Store) ListBookings(_ context.Context, filter storage.BookingFilter) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range s.data.bookings {
		if !filter.UserID.IsZero() && b.User != filter.UserID {
			continue
		}
		if !filter.SpecialistID.IsZero() && b.Specialist != filter.SpecialistID {
			continue
		}
		if !filter.ServiceDate.IsZero() && !b.ServiceDate.Equal(filter.ServiceDate) {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}

	switch filter.Sort {
	case storage.SortStartTimeAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	default:
		sort.Slice(out, func(i, j int) bool {
			if !out[i].ServiceDate.Equal(out[j].ServiceDate) {
				return out[i].ServiceDate.After(out[j].ServiceDate)
			}
			return out[i].StartTime.After(out[j].StartTime)
		})
	}
	return out, nil
}

func (s *Store) DeleteBookingsBySpecialist(ctx context.Context, specialistID primitive.ObjectID) (int64, error) {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, b := range s.data.bookings {
		if b.Specialist == specialistID {
			delete(s.data.bookings, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	defer s.exclusive(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, b := range s.data.bookings {
		if b.Status == models.StatusBooked && b.EndTime.Before(now) {
			b.Status = models.StatusCompleted
			s.data.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func pick[T any](m map[primitive.ObjectID]T, ids []primitive.ObjectID) []T {
	out := make([]T, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if v, ok := m[id]; ok {
			out = append(out, v)
		}
	}
	return out
}
