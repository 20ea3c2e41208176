package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
	"github.com/harentsoaR/booking-api/internal/storage/memstore"
	"github.com/harentsoaR/booking-api/internal/utils"
)

type fixture struct {
	store       *memstore.Store
	now         time.Time
	bookings    *BookingService
	specialists *SpecialistService
	catalog     *CatalogService
	accounts    *AccountService
	notifier    *recordingNotifier

	customer Actor
	other    Actor
	admin    Actor
	service  models.Service
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
}

func (n *recordingNotifier) SendBookingConfirmationSMS(_ *models.User, b *models.BookingDetail) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, b.ID.Hex())
}

func (n *recordingNotifier) SendBookingCancellationSMS(_ *models.User, b *models.BookingDetail) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, b.ID.Hex())
}

// newFixture pins the clock at 2024-01-09 12:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		now:      time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC),
		notifier: &recordingNotifier{},
	}
	clock := func() time.Time { return f.now }

	tokens, err := utils.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	hasher := utils.NewPasswordHasher(4)
	f.bookings = NewBookingService(f.store, DefaultBookingPolicy(), f.notifier, clock)
	f.specialists = NewSpecialistService(f.store, hasher, clock)
	f.catalog = NewCatalogService(f.store)
	f.accounts = NewAccountService(f.store, hasher, tokens, f.bookings, clock)

	f.customer = f.user(t, "Cara", "cara@example.com", models.RoleCustomer)
	f.other = f.user(t, "Omar", "omar@example.com", models.RoleCustomer)
	f.admin = f.user(t, "Ada", "ada@example.com", models.RoleAdmin)

	price := 40.0
	svc, err := f.catalog.Create(context.Background(), CreateServiceInput{Title: "Haircut", Price: &price})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	f.service = *svc
	return f
}

func (f *fixture) user(t *testing.T, name, email string, role models.Role) Actor {
	t.Helper()
	u := models.User{Name: name, Email: email, Password: "x", Role: role, Phone: "+15550000000"}
	if err := f.store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return Actor{UserID: u.ID, Role: role}
}

func (f *fixture) specialist(t *testing.T, email string) *models.SpecialistDetail {
	t.Helper()
	years := 3
	sp, err := f.specialists.Create(context.Background(), CreateSpecialistInput{
		Name:            "Spec " + email,
		Email:           email,
		Password:        "secret1",
		Description:     "Senior stylist",
		Class:           "senior",
		YearsExperience: &years,
	})
	if err != nil {
		t.Fatalf("create specialist: %v", err)
	}
	return sp
}

// request builds a booking request whose service date is the date part
// of start.
func (f *fixture) request(specialist *models.SpecialistDetail, start, end string) BookingRequest {
	date := start
	if len(date) > 10 {
		date = date[:10]
	}
	return BookingRequest{
		ServiceID:    f.service.ID.Hex(),
		SpecialistID: specialist.ID.Hex(),
		ServiceDate:  date,
		StartTime:    start,
		EndTime:      end,
	}
}

func (f *fixture) book(t *testing.T, actor Actor, req BookingRequest) *models.BookingDetail {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("create booking %s-%s: %v", req.StartTime, req.EndTime, err)
	}
	return b
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %s", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind = %s, want %s (err %v)", got, kind, err)
	}
}

func wantMessage(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %q", msg)
	}
	got := apperr.From(err).Message
	if got != msg {
		t.Fatalf("message = %q, want %q", got, msg)
	}
}

func ptr[T any](v T) *T { return &v }

var storageAll = storage.BookingFilter{}
