package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
)

const dateLayout = "2006-01-02"

// Zone-less layouts are read in the business time zone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var errUnparsable = errors.New("unparsable time")

// BookingPolicy is the business window and cancellation cutoff bookings
// are held to.
type BookingPolicy struct {
	Location      *time.Location
	OpenHour      int
	LastStartHour int
	CancelCutoff  time.Duration
}

func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		Location:      time.UTC,
		OpenHour:      9,
		LastStartHour: 20,
		CancelCutoff:  time.Hour,
	}
}

func (p BookingPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// ParseInstant reads an RFC 3339 timestamp, or a zone-less local time in
// the business zone.
func (p BookingPolicy) ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errUnparsable
}

// ParseDate reads a calendar date (YYYY-MM-DD, or the date part of an
// RFC 3339 timestamp as written) and returns its midnight in the business
// zone, in UTC.
func (p BookingPolicy) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return p.midnight(t.Year(), t.Month(), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return p.midnight(t.Year(), t.Month(), t.Day()), nil
	}
	return time.Time{}, errUnparsable
}

func (p BookingPolicy) midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, p.location()).UTC()
}

// OnTheHour reports whether t falls exactly on a full hour in the
// business zone.
func (p BookingPolicy) OnTheHour(t time.Time) bool {
	local := t.In(p.location())
	return local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0
}

// WithinWindow reports whether t starts inside [OpenHour, LastStartHour].
func (p BookingPolicy) WithinWindow(t time.Time) bool {
	hour := t.In(p.location()).Hour()
	return hour >= p.OpenHour && hour <= p.LastStartHour
}

// CanCancel reports whether a non-admin may still cancel a booking that
// starts at start.
func (p BookingPolicy) CanCancel(now, start time.Time) bool {
	return now.Add(p.CancelCutoff).Before(start)
}

// SlotLabel renders a busy start time as "HH:00".
func (p BookingPolicy) SlotLabel(t time.Time) string {
	return t.In(p.location()).Format("15:04")
}

// Overlaps is the half-open interval test: [s1,e1) and [s2,e2) overlap
// iff s1 < e2 and s2 < e1. Touching intervals do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Rule errors. Messages are part of the API.
const (
	errMissingFields   = "Missing required fields"
	errInvalidDate     = "Invalid date format"
	errEndBeforeStart  = "endTime must be after startTime"
	errStartInPast     = "startTime cannot be in the past"
	errNotOnTheHour    = "Bookings must start on the hour"
	errSlotTaken       = "Time slot already booked"
	errSpecialistGone  = "Specialist not found"
	errServiceGone     = "Service not found"
	errServiceInactive = "Service is not available for booking"
)

func (p BookingPolicy) windowMessage() string {
	return fmt.Sprintf("Bookings must start between %02d:00 and %02d:00", p.OpenHour, p.LastStartHour)
}

func (p BookingPolicy) cutoffMessage() string {
	return fmt.Sprintf("Bookings can only be cancelled more than %s before the start time", humanDuration(p.CancelCutoff))
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}

// BookingRequest is the raw candidate for a new booking.
type BookingRequest struct {
	ServiceID    string `json:"serviceId"`
	SpecialistID string `json:"specialistId"`
	ServiceDate  string `json:"serviceDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	// UserID books on behalf of another user. Admins only.
	UserID string `json:"userId,omitempty"`
}

// bookingDraft accumulates the normalised values as rules pass.
type bookingDraft struct {
	req         BookingRequest
	user        primitive.ObjectID
	serviceDate time.Time
	start       time.Time
	end         time.Time
	specialist  models.Specialist
	service     models.Service
}

func (d *bookingDraft) booking(now time.Time) models.Booking {
	return models.Booking{
		User:        d.user,
		Service:     d.service.ID,
		Specialist:  d.specialist.ID,
		ServiceDate: d.serviceDate,
		StartTime:   d.start,
		EndTime:     d.end,
		Status:      models.StatusBooked,
		CreatedAt:   now.UTC(),
	}
}

// bookingRule is one step of the creation pipeline.
type bookingRule struct {
	name  string
	check func(ctx context.Context, d *bookingDraft) error
}

// creationRules lists the checks a new booking passes, in the order that
// decides which error a malformed request receives.
func (s *BookingService) creationRules() []bookingRule {
	return []bookingRule{
		{"required fields", func(_ context.Context, d *bookingDraft) error {
			r := d.req
			for _, v := range []string{r.ServiceID, r.SpecialistID, r.ServiceDate, r.StartTime, r.EndTime} {
				if strings.TrimSpace(v) == "" {
					return apperr.Validation(errMissingFields)
				}
			}
			return nil
		}},
		{"parsable times", func(_ context.Context, d *bookingDraft) error {
			var err1, err2, err3 error
			d.start, err1 = s.policy.ParseInstant(d.req.StartTime)
			d.end, err2 = s.policy.ParseInstant(d.req.EndTime)
			d.serviceDate, err3 = s.policy.ParseDate(d.req.ServiceDate)
			if err1 != nil || err2 != nil || err3 != nil {
				return apperr.Validation(errInvalidDate)
			}
			return nil
		}},
		{"end after start", func(_ context.Context, d *bookingDraft) error {
			return s.checkEndAfterStart(d.start, d.end)
		}},
		{"not in the past", func(_ context.Context, d *bookingDraft) error {
			return s.checkNotPast(d.start)
		}},
		{"on the hour", func(_ context.Context, d *bookingDraft) error {
			return s.checkOnTheHour(d.start)
		}},
		{"business window", func(_ context.Context, d *bookingDraft) error {
			return s.checkWindow(d.start)
		}},
		{"specialist exists", func(ctx context.Context, d *bookingDraft) error {
			specialist, err := resolveSpecialist(ctx, s.store, d.req.SpecialistID)
			if err != nil {
				return err
			}
			d.specialist = specialist
			return nil
		}},
		{"service available", func(ctx context.Context, d *bookingDraft) error {
			service, err := s.availableService(ctx, d.req.ServiceID)
			if err != nil {
				return err
			}
			d.service = service
			return nil
		}},
		{"slot free", func(ctx context.Context, d *bookingDraft) error {
			return s.checkSlotFree(ctx, d.specialist.ID, d.serviceDate, d.start, d.end, primitive.NilObjectID)
		}},
	}
}

func evaluate(ctx context.Context, rules []bookingRule, d *bookingDraft) error {
	for _, rule := range rules {
		if err := rule.check(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *BookingService) checkEndAfterStart(start, end time.Time) error {
	if !end.After(start) {
		return apperr.Validation(errEndBeforeStart)
	}
	return nil
}

func (s *BookingService) checkNotPast(start time.Time) error {
	if start.Before(s.now()) {
		return apperr.Validation(errStartInPast)
	}
	return nil
}

func (s *BookingService) checkOnTheHour(start time.Time) error {
	if !s.policy.OnTheHour(start) {
		return apperr.Validation(errNotOnTheHour)
	}
	return nil
}

func (s *BookingService) checkWindow(start time.Time) error {
	if !s.policy.WithinWindow(start) {
		return apperr.Validation(s.policy.windowMessage())
	}
	return nil
}

func (s *BookingService) availableService(ctx context.Context, raw string) (models.Service, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return models.Service{}, apperr.NotFound(errServiceGone)
	}
	service, err := s.store.GetService(ctx, id)
	if err != nil {
		return models.Service{}, storeErr(err, errServiceGone)
	}
	if !service.IsActive {
		return models.Service{}, apperr.Validation(errServiceInactive)
	}
	return service, nil
}

// checkSlotFree is the slot conflict checker. It claims the specialist's
// day first so a concurrent unit of work cannot slip a booking in between
// the read and the caller's write.
func (s *BookingService) checkSlotFree(ctx context.Context, specialistID primitive.ObjectID, serviceDate, start, end time.Time, exclude primitive.ObjectID) error {
	if err := s.store.LockSpecialistDay(ctx, specialistID, serviceDate); err != nil {
		return err
	}
	conflict, err := s.HasConflict(ctx, specialistID, serviceDate, start, end, exclude)
	if err != nil {
		return err
	}
	if conflict {
		return apperr.Conflict(errSlotTaken)
	}
	return nil
}

// HasConflict reports whether [start, end) overlaps another booked booking
// of the specialist on serviceDate. Cancelled and completed bookings never
// conflict.
func (s *BookingService) HasConflict(ctx context.Context, specialistID primitive.ObjectID, serviceDate, start, end time.Time, exclude primitive.ObjectID) (bool, error) {
	existing, err := s.store.ListBookings(ctx, storage.BookingFilter{
		SpecialistID: specialistID,
		ServiceDate:  serviceDate,
		Status:       models.StatusBooked,
		Sort:         storage.SortStartTimeAsc,
	})
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.ID == exclude {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true, nil
		}
	}
	return false, nil
}
