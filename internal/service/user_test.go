package service

import (
	"context"
	"testing"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/store"
	"github.com/drawmaster/hub/internal/testutil"
)

func newUserService(t *testing.T) (*UserService, *store.Queries) {
	t.Helper()
	db := testutil.TestDB(t)
	return NewUserService(db, testutil.TestLogger(), time.Hour), store.New(db)
}

func TestRegister(t *testing.T) {
	svc, queries := newUserService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "hunter22",
	}, ClientInfo{IP: "10.0.0.1", UserAgent: "Mozilla/5.0"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want user", user.Role)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	// The issued token resolves back to the user.
	rec, err := queries.GetAuthTokenByHash(ctx, model.HashToken(token))
	if err != nil {
		t.Fatalf("GetAuthTokenByHash: %v", err)
	}
	if rec.UserID != user.ID {
		t.Errorf("token UserID = %d, want %d", rec.UserID, user.ID)
	}

	// Registering the same email again conflicts.
	_, _, err = svc.Register(ctx, RegisterInput{
		Name:     "Impostor",
		Email:    "alice@example.com",
		Password: "hunter22",
	}, ClientInfo{})
	if KindOf(err) != KindConflict {
		t.Errorf("duplicate email: kind = %v, want conflict", KindOf(err))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "secret1"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tt.in, ClientInfo{}); KindOf(err) != KindValidation {
				t.Errorf("kind = %v, want validation", KindOf(err))
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}, ClientInfo{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, token, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "hunter22"}, ClientInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Name != "Alice" || token == "" {
		t.Errorf("user = %+v, token = %q", user, token)
	}

	// Wrong password and unknown email are indistinguishable.
	_, _, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"}, ClientInfo{})
	if KindOf(err) != KindAuthentication || MessageOf(err) != "Invalid credentials" {
		t.Errorf("wrong password: %v", err)
	}
	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter22"}, ClientInfo{})
	if KindOf(err) != KindAuthentication || MessageOf(err) != "Invalid credentials" {
		t.Errorf("unknown email: %v", err)
	}

	_, _, err = svc.Login(ctx, LoginInput{Email: "", Password: ""}, ClientInfo{})
	if KindOf(err) != KindValidation {
		t.Errorf("empty credentials: kind = %v, want validation", KindOf(err))
	}
}

func TestLogout(t *testing.T) {
	svc, queries := newUserService(t)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}, ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.LogoutByHash(ctx, model.HashToken(token)); err != nil {
		t.Fatalf("LogoutByHash: %v", err)
	}
	if _, err := queries.GetAuthTokenByHash(ctx, model.HashToken(token)); err == nil {
		t.Error("token still present after logout")
	}
}

func TestUpdateDetails(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}, ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register(ctx, RegisterInput{
		Name: "Bob", Email: "bob@example.com", Password: "hunter22",
	}, ClientInfo{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	updated, err := svc.UpdateDetails(ctx, &alice, UpdateDetailsInput{
		Name:  "Alice Cooper",
		Email: "alice.cooper@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if updated.Name != "Alice Cooper" || updated.Email != "alice.cooper@example.com" {
		t.Errorf("updated = %+v", updated)
	}

	// Taking another user's email conflicts.
	_, err = svc.UpdateDetails(ctx, &updated, UpdateDetailsInput{
		Name:  "Alice Cooper",
		Email: "bob@example.com",
	})
	if KindOf(err) != KindConflict {
		t.Errorf("taken email: kind = %v, want conflict", KindOf(err))
	}

	// Keeping your own email is not a conflict.
	if _, err := svc.UpdateDetails(ctx, &updated, UpdateDetailsInput{
		Name:  "Alice C",
		Email: "alice.cooper@example.com",
	}); err != nil {
		t.Errorf("same email update: %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, queries := newUserService(t)
	ctx := context.Background()

	alice, token, err := svc.Register(ctx, RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}, ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A second session that the password change must revoke.
	_, otherToken, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "hunter22"}, ClientInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	err = svc.UpdatePassword(ctx, &alice, UpdatePasswordInput{
		CurrentPassword: "hunter22",
		NewPassword:     "correct horse",
	}, model.HashToken(token))
	if err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if _, err := queries.GetAuthTokenByHash(ctx, model.HashToken(token)); err != nil {
		t.Errorf("presented token revoked: %v", err)
	}
	if _, err := queries.GetAuthTokenByHash(ctx, model.HashToken(otherToken)); err == nil {
		t.Error("other session still valid after password change")
	}

	if _, _, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct horse"}, ClientInfo{}); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	// Wrong current password.
	err = svc.UpdatePassword(ctx, &alice, UpdatePasswordInput{
		CurrentPassword: "hunter22",
		NewPassword:     "whatever1",
	}, model.HashToken(token))
	if KindOf(err) != KindAuthentication {
		t.Errorf("stale current password: kind = %v, want authentication", KindOf(err))
	}
}
