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
)

// BookingNotifier is told about bookings after they are committed.
type BookingNotifier interface {
	SendBookingConfirmationSMS(customer *models.User, booking *models.BookingDetail)
	SendBookingCancellationSMS(customer *models.User, booking *models.BookingDetail)
}

// BookingService evaluates booking rules and persists the outcome.
type BookingService struct {
	store    storage.Store
	policy   BookingPolicy
	sweeper  *Sweeper
	notifier BookingNotifier
	now      Clock
}

func NewBookingService(store storage.Store, policy BookingPolicy, notifier BookingNotifier, now Clock) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		store:    store,
		policy:   policy,
		sweeper:  NewSweeper(store, now),
		notifier: notifier,
		now:      now,
	}
}

func (s *BookingService) Policy() BookingPolicy { return s.policy }

// Create validates the request through the creation rules and stores the
// booking. The rules and the insert share one unit of work.
func (s *BookingService) Create(ctx context.Context, actor Actor, req BookingRequest) (*models.BookingDetail, error) {
	s.sweeper.Sweep(ctx)

	owner, err := s.bookingOwner(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		draft := &bookingDraft{req: req, user: owner}
		if err := evaluate(ctx, s.creationRules(), draft); err != nil {
			return err
		}
		booking = draft.booking(s.now())
		return s.store.CreateBooking(ctx, &booking)
	})
	if err != nil {
		return nil, slotErr(err)
	}
	log.Printf("Booking %s created for specialist %s at %s", booking.ID.Hex(), booking.Specialist.Hex(), booking.StartTime.Format(time.RFC3339))

	detail, err := populateBooking(ctx, s.store, booking)
	if err != nil {
		return nil, apperr.From(err)
	}
	s.notify(ctx, booking.User, detail, false)
	return detail, nil
}

// bookingOwner resolves who a new booking belongs to. Only admins may
// book for someone else.
func (s *BookingService) bookingOwner(ctx context.Context, actor Actor, onBehalfOf string) (primitive.ObjectID, error) {
	onBehalfOf = strings.TrimSpace(onBehalfOf)
	if onBehalfOf == "" || onBehalfOf == actor.UserID.Hex() {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() {
		return primitive.NilObjectID, apperr.Forbidden("Only admins can book on behalf of another user")
	}
	id, err := ParseID(onBehalfOf, "user")
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return primitive.NilObjectID, storeErr(err, "User not found")
	}
	return id, nil
}

// ListMine returns the caller's bookings, most recent service date first.
func (s *BookingService) ListMine(ctx context.Context, actor Actor) ([]models.BookingDetail, error) {
	s.sweeper.Sweep(ctx)
	return s.list(ctx, storage.BookingFilter{UserID: actor.UserID})
}

// ListAll returns every booking. Admins only.
func (s *BookingService) ListAll(ctx context.Context, actor Actor) ([]models.BookingDetail, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("Access denied")
	}
	s.sweeper.Sweep(ctx)
	return s.list(ctx, storage.BookingFilter{})
}

func (s *BookingService) list(ctx context.Context, filter storage.BookingFilter) ([]models.BookingDetail, error) {
	bookings, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		return nil, apperr.From(err)
	}
	details, err := populateBookings(ctx, s.store, bookings)
	if err != nil {
		return nil, apperr.From(err)
	}
	return details, nil
}

// Get returns one booking to its owner, its specialist or an admin.
func (s *BookingService) Get(ctx context.Context, actor Actor, rawID string) (*models.BookingDetail, error) {
	id, err := ParseID(rawID, "booking")
	if err != nil {
		return nil, err
	}
	s.sweeper.Sweep(ctx)

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Booking not found")
	}
	if booking.User != actor.UserID && !actor.IsAdmin() {
		involved, err := s.isBookedSpecialist(ctx, booking, actor)
		if err != nil {
			return nil, err
		}
		if !involved {
			return nil, apperr.Forbidden("You don't have permission to view this booking")
		}
	}

	detail, err := populateBooking(ctx, s.store, booking)
	if err != nil {
		return nil, apperr.From(err)
	}
	return detail, nil
}

func (s *BookingService) isBookedSpecialist(ctx context.Context, booking models.Booking, actor Actor) (bool, error) {
	if actor.Role != models.RoleSpecialist {
		return false, nil
	}
	profile, err := s.store.GetSpecialist(ctx, booking.Specialist)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.From(err)
	}
	return profile.User == actor.UserID, nil
}

// BookingPatch carries the fields a booking update may change. Nil or
// empty fields are left untouched.
type BookingPatch struct {
	ServiceID    *string `json:"serviceId"`
	SpecialistID *string `json:"specialistId"`
	ServiceDate  *string `json:"serviceDate"`
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	Status       *string `json:"status"`
}

func given(p *string) bool { return p != nil && strings.TrimSpace(*p) != "" }

// Update applies a patch for the booking's owner or an admin.
func (s *BookingService) Update(ctx context.Context, actor Actor, rawID string, patch BookingPatch) (*models.BookingDetail, error) {
	id, err := ParseID(rawID, "booking")
	if err != nil {
		return nil, err
	}

	var before, after models.Booking
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.store.GetBooking(ctx, id)
		if err != nil {
			return storeErr(err, "Booking not found")
		}
		next, err := s.applyPatch(ctx, actor, current, patch)
		if err != nil {
			return err
		}
		if err := s.store.UpdateBooking(ctx, next); err != nil {
			return err
		}
		before, after = current, next
		return nil
	})
	if err != nil {
		return nil, slotErr(err)
	}

	detail, err := populateBooking(ctx, s.store, after)
	if err != nil {
		return nil, apperr.From(err)
	}
	if before.Status != models.StatusCancelled && after.Status == models.StatusCancelled {
		log.Printf("Booking %s cancelled by %s", after.ID.Hex(), actor.UserID.Hex())
		s.notify(ctx, after.User, detail, true)
	}
	return detail, nil
}

// applyPatch runs the mutation rules against current and returns the
// booking as it should be stored.
func (s *BookingService) applyPatch(ctx context.Context, actor Actor, current models.Booking, patch BookingPatch) (models.Booking, error) {
	if current.User != actor.UserID && !actor.IsAdmin() {
		return current, apperr.Forbidden("You don't have permission to update this booking")
	}
	if given(patch.SpecialistID) && !actor.IsAdmin() {
		specialist, err := resolveSpecialist(ctx, s.store, *patch.SpecialistID)
		if err != nil || specialist.ID != current.Specialist {
			return current, apperr.Forbidden("Only admins can reassign a booking to another specialist")
		}
	}

	next := current
	if given(patch.Status) {
		status := models.BookingStatus(strings.TrimSpace(*patch.Status))
		if !status.Valid() {
			return current, apperr.Validation("Invalid status")
		}
		if status != current.Status {
			switch status {
			case models.StatusCompleted:
				if !actor.IsAdmin() {
					return current, apperr.Forbidden("Only admins can mark a booking as completed")
				}
			case models.StatusCancelled:
				if !actor.IsAdmin() && !s.policy.CanCancel(s.now(), current.StartTime) {
					return current, apperr.Validation(s.policy.cutoffMessage())
				}
			case models.StatusBooked:
				if !current.EndTime.After(s.now()) {
					return current, apperr.Validation("A booking that has already ended cannot be booked again")
				}
			}
		}
		next.Status = status
	}

	var err error
	if given(patch.ServiceDate) {
		if next.ServiceDate, err = s.policy.ParseDate(*patch.ServiceDate); err != nil {
			return current, apperr.Validation(errInvalidDate)
		}
	}
	if given(patch.StartTime) {
		if next.StartTime, err = s.policy.ParseInstant(*patch.StartTime); err != nil {
			return current, apperr.Validation(errInvalidDate)
		}
	}
	if given(patch.EndTime) {
		if next.EndTime, err = s.policy.ParseInstant(*patch.EndTime); err != nil {
			return current, apperr.Validation(errInvalidDate)
		}
	}
	if !next.StartTime.Equal(current.StartTime) || !next.EndTime.Equal(current.EndTime) {
		if err := s.checkEndAfterStart(next.StartTime, next.EndTime); err != nil {
			return current, err
		}
	}
	if !next.StartTime.Equal(current.StartTime) {
		if err := s.checkNotPast(next.StartTime); err != nil {
			return current, err
		}
		if err := s.checkOnTheHour(next.StartTime); err != nil {
			return current, err
		}
		if err := s.checkWindow(next.StartTime); err != nil {
			return current, err
		}
	}

	if given(patch.SpecialistID) {
		specialist, err := resolveSpecialist(ctx, s.store, *patch.SpecialistID)
		if err != nil {
			return current, err
		}
		next.Specialist = specialist.ID
	}
	if given(patch.ServiceID) && strings.TrimSpace(*patch.ServiceID) != current.Service.Hex() {
		service, err := s.availableService(ctx, *patch.ServiceID)
		if err != nil {
			return current, err
		}
		next.Service = service.ID
	}

	rescheduled := next.Specialist != current.Specialist ||
		!next.ServiceDate.Equal(current.ServiceDate) ||
		!next.StartTime.Equal(current.StartTime) ||
		!next.EndTime.Equal(current.EndTime) ||
		current.Status != models.StatusBooked
	if next.Status == models.StatusBooked && rescheduled {
		if err := s.checkSlotFree(ctx, next.Specialist, next.ServiceDate, next.StartTime, next.EndTime, current.ID); err != nil {
			return current, err
		}
	}
	return next, nil
}

// Delete removes a booking for its owner or an admin. Nothing is kept.
func (s *BookingService) Delete(ctx context.Context, actor Actor, rawID string) error {
	id, err := ParseID(rawID, "booking")
	if err != nil {
		return err
	}
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return storeErr(err, "Booking not found")
	}
	if booking.User != actor.UserID && !actor.IsAdmin() {
		return apperr.Forbidden("You don't have permission to delete this booking")
	}
	if err := s.store.DeleteBooking(ctx, id); err != nil {
		return storeErr(err, "Booking not found")
	}
	log.Printf("Booking %s deleted by %s", id.Hex(), actor.UserID.Hex())
	return nil
}

// BusySlots lists the "HH:00" start labels of the booked bookings of a
// specialist on a date.
func (s *BookingService) BusySlots(ctx context.Context, specialistRef, date string) ([]string, error) {
	if strings.TrimSpace(specialistRef) == "" || strings.TrimSpace(date) == "" {
		return nil, apperr.Validation("specialistId and date are required")
	}
	serviceDate, err := s.policy.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation(errInvalidDate)
	}
	s.sweeper.Sweep(ctx)

	specialist, err := resolveSpecialist(ctx, s.store, specialistRef)
	if err != nil {
		return nil, err
	}
	bookings, err := s.store.ListBookings(ctx, storage.BookingFilter{
		SpecialistID: specialist.ID,
		ServiceDate:  serviceDate,
		Status:       models.StatusBooked,
		Sort:         storage.SortStartTimeAsc,
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	slots := make([]string, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, s.policy.SlotLabel(b.StartTime))
	}
	return slots, nil
}

func (s *BookingService) notify(ctx context.Context, userID primitive.ObjectID, detail *models.BookingDetail, cancelled bool) {
	if s.notifier == nil {
		return
	}
	customer, err := s.store.GetUser(ctx, userID)
	if err != nil {
		log.Printf("SMS not sent: could not load customer %s: %v", userID.Hex(), err)
		return
	}
	if cancelled {
		s.notifier.SendBookingCancellationSMS(&customer, detail)
		return
	}
	s.notifier.SendBookingConfirmationSMS(&customer, detail)
}

// slotErr reports a unique-index hit on a booked slot as a conflict.
func slotErr(err error) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return &apperr.Error{Kind: apperr.KindConflict, Message: errSlotTaken, Err: err}
	}
	return apperr.From(err)
}
