package services

import (
	"context"
	"errors"
	"testing"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
	"github.com/harentsoaR/booking-api/internal/storage"
	"github.com/harentsoaR/booking-api/internal/storage/memstore"
	"github.com/harentsoaR/booking-api/internal/utils"
)

// failingProfileStore fails every profile insert after the user insert
// has already gone through.
type failingProfileStore struct {
	*memstore.Store
}

func (failingProfileStore) CreateSpecialist(context.Context, *models.Specialist) error {
	return errors.New("disk full")
}

func TestCreateSpecialistRollsBack(t *testing.T) {
	t.Parallel()
	store := failingProfileStore{memstore.New()}
	svc := NewSpecialistService(store, utils.NewPasswordHasher(4), nil)

	years := 2
	_, err := svc.Create(context.Background(), CreateSpecialistInput{
		Name: "Sam", Email: "sam@example.com", Password: "secret1",
		Description: "Colorist", Class: "junior", YearsExperience: &years,
	})
	wantKind(t, err, apperr.KindInternal)

	if _, err := store.GetUserByEmail(context.Background(), "sam@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("user after rollback err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateSpecialist(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	s := f.specialist(t, "s@example.com")

	user, err := f.store.GetUser(ctx, s.User.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Role != models.RoleSpecialist {
		t.Fatalf("role = %s, want %s", user.Role, models.RoleSpecialist)
	}
	if user.Password == "secret1" {
		t.Fatalf("password stored in plain text")
	}

	years := 1
	_, err = f.specialists.Create(ctx, CreateSpecialistInput{
		Name: "Dup", Email: "S@example.com", Password: "secret1",
		Description: "d", Class: "c", YearsExperience: &years,
	})
	wantKind(t, err, apperr.KindConflict)

	_, err = f.specialists.Create(ctx, CreateSpecialistInput{
		Name: "NoYears", Email: "n@example.com", Password: "secret1",
		Description: "d", Class: "c",
	})
	wantMessage(t, err, "yearsExperience is required")

	negative := -1
	_, err = f.specialists.Create(ctx, CreateSpecialistInput{
		Name: "Neg", Email: "neg@example.com", Password: "secret1",
		Description: "d", Class: "c", YearsExperience: &negative,
	})
	wantMessage(t, err, "yearsExperience cannot be less than 0")

	list, err := f.specialists.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %d, %v, want 1", len(list), err)
	}
	if list[0].User == nil || list[0].User.Name != "Spec s@example.com" {
		t.Fatalf("list user = %+v, want populated", list[0].User)
	}
}

func TestUpdateSpecialist(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	s := f.specialist(t, "s@example.com")

	got, err := f.specialists.Update(ctx, s.ID.Hex(), UpdateSpecialistInput{
		Name:            ptr("Renamed"),
		Class:           ptr("lead"),
		YearsExperience: ptr(7),
		Password:        ptr("another1"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Class != "lead" || got.YearsExperience != 7 || got.User.Name != "Renamed" {
		t.Fatalf("updated = %+v, user %+v", got, got.User)
	}
	user, _ := f.store.GetUser(ctx, s.User.ID)
	if !utils.NewPasswordHasher(4).CheckPasswordHash("another1", user.Password) {
		t.Fatalf("password was not rehashed")
	}

	// Taking another user's email rolls back the profile change too.
	_, err = f.specialists.Update(ctx, s.ID.Hex(), UpdateSpecialistInput{
		Class: ptr("principal"),
		Email: ptr("cara@example.com"),
	})
	wantKind(t, err, apperr.KindConflict)
	after, err := f.specialists.Get(ctx, s.ID.Hex())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Class != "lead" {
		t.Fatalf("class = %q, want %q", after.Class, "lead")
	}
}

func TestDeleteSpecialistCascades(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	s := f.specialist(t, "s@example.com")
	keep := f.specialist(t, "k@example.com")

	b1 := f.book(t, f.customer, f.request(s, "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z"))
	b2 := f.book(t, f.other, f.request(s, "2024-01-11T10:00:00Z", "2024-01-11T11:00:00Z"))
	kept := f.book(t, f.other, f.request(keep, "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z"))

	if err := f.specialists.Delete(ctx, s.User.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, id := range []string{b1.ID.Hex(), b2.ID.Hex()} {
		_, err := f.bookings.Get(ctx, f.admin, id)
		wantKind(t, err, apperr.KindNotFound)
	}
	if _, err := f.bookings.Get(ctx, f.admin, kept.ID.Hex()); err != nil {
		t.Fatalf("other specialist's booking: %v", err)
	}
	if _, err := f.store.GetUser(ctx, s.User.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("backing user err = %v, want %v", err, storage.ErrNotFound)
	}
	_, err := f.specialists.Get(ctx, s.ID.Hex())
	wantKind(t, err, apperr.KindNotFound)

	wantKind(t, f.specialists.Delete(ctx, s.ID.Hex()), apperr.KindNotFound)
}

func TestResolveSpecialist(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	s := f.specialist(t, "s@example.com")

	for _, ref := range []string{s.ID.Hex(), s.User.ID.Hex(), " " + s.ID.Hex() + " "} {
		got, err := resolveSpecialist(ctx, f.store, ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if got.ID != s.ID {
			t.Fatalf("resolve %q = %s, want %s", ref, got.ID.Hex(), s.ID.Hex())
		}
	}
	_, err := resolveSpecialist(ctx, f.store, "not-an-id")
	wantKind(t, err, apperr.KindNotFound)
	_, err = resolveSpecialist(ctx, f.store, f.customer.UserID.Hex())
	wantKind(t, err, apperr.KindNotFound)
}
