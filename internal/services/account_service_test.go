package services

import (
	"context"
	"testing"

	"github.com/harentsoaR/booking-api/internal/apperr"
	"github.com/harentsoaR/booking-api/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.accounts.Register(ctx, RegisterInput{Name: "Nia", Email: "nia@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Token == "" || res.User.Role != models.RoleCustomer {
		t.Fatalf("register = %+v", res)
	}
	if res.User.Password == "hunter22" {
		t.Fatalf("password stored in plain text")
	}

	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Nia", Email: "NIA@example.com", Password: "hunter22"})
	wantKind(t, err, apperr.KindConflict)
	wantMessage(t, err, "User already exists")

	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Bo", Email: "not-an-email", Password: "hunter22"})
	wantMessage(t, err, "email must be a valid email")

	_, err = f.accounts.Register(ctx, RegisterInput{Name: "Bo", Email: "bo@example.com", Password: "abc"})
	wantMessage(t, err, "password must be at least 6 characters")

	login, err := f.accounts.Login(ctx, LoginInput{Email: "nia@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login user = %s, want %s", login.User.ID.Hex(), res.User.ID.Hex())
	}

	_, err = f.accounts.Login(ctx, LoginInput{Email: "nia@example.com", Password: "wrong"})
	wantKind(t, err, apperr.KindUnauthorized)
	wantMessage(t, err, errBadCredentials)

	_, err = f.accounts.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "hunter22"})
	wantMessage(t, err, errBadCredentials)
}

func TestProfileAndPassword(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.accounts.Register(ctx, RegisterInput{Name: "Nia", Email: "nia@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	actor := Actor{UserID: res.User.ID, Role: res.User.Role}

	got, err := f.accounts.UpdateProfile(ctx, actor, UpdateProfileInput{Name: ptr("Nia B"), Phone: ptr("+15551234567")})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if got.Name != "Nia B" || got.Email != "nia@example.com" || got.Phone != "+15551234567" {
		t.Fatalf("profile = %+v", got)
	}

	_, err = f.accounts.UpdateProfile(ctx, actor, UpdateProfileInput{Email: ptr("cara@example.com")})
	wantKind(t, err, apperr.KindConflict)

	if err := f.accounts.UpdatePassword(ctx, actor, UpdatePasswordInput{Password: "newpass1"}); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if _, err := f.accounts.Login(ctx, LoginInput{Email: "nia@example.com", Password: "newpass1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	wantKind(t, f.accounts.UpdatePassword(ctx, actor, UpdatePasswordInput{}), apperr.KindValidation)

	profile, err := f.accounts.Profile(ctx, actor)
	if err != nil || profile.Name != "Nia B" {
		t.Fatalf("profile = %+v, %v", profile, err)
	}
}

func TestSeedAdmin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if err := f.accounts.SeedAdmin(ctx, "Root", "", "secret"); err != nil {
		t.Fatalf("seed without email: %v", err)
	}
	if err := f.accounts.SeedAdmin(ctx, "Root", "root@example.com", "rootpass"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := f.accounts.SeedAdmin(ctx, "Root", "root@example.com", "rootpass"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	login, err := f.accounts.Login(ctx, LoginInput{Email: "root@example.com", Password: "rootpass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want %s", login.User.Role, models.RoleAdmin)
	}
}
