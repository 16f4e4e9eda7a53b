package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"txapp-service/internal/domain/entity"
)

func TestAuthService_LoginAndResolve(t *testing.T) {
	users := &fakeUserRepo{}
	auth := NewAuthService(users, "test-secret", time.Hour, newTestLogger())
	ctx := context.Background()

	driverID := uint(5)
	if _, err := auth.EnsureUser(ctx, "jdupont", "s3cret-pass", entity.RoleDriver, &driverID); err != nil {
		t.Fatal(err)
	}

	if _, _, err := auth.Login(ctx, "jdupont", "wrong-pass"); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody", "s3cret-pass"); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	token, user, err := auth.Login(ctx, "jdupont", "s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in clear")
	}

	id, err := auth.Resolve(token)
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != entity.RoleDriver || id.DriverID != 5 || id.UserID != user.ID {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if !id.Can(entity.ActionLogTrip) || id.Can(entity.ActionValidateShift) {
		t.Fatalf("capabilities not resolved for the role")
	}

	if _, err := auth.Resolve(token + "x"); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("tampered token must be rejected, got %v", err)
	}

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := auth.Resolve(token); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}

	other := NewAuthService(users, "other-secret", time.Hour, newTestLogger())
	if _, err := other.Resolve(token); !errors.Is(err, entity.ErrUnauthorized) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}

func TestAuthService_EnsureUser(t *testing.T) {
	users := &fakeUserRepo{}
	auth := NewAuthService(users, "test-secret", time.Hour, newTestLogger())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		role     entity.Role
		want     error
	}{
		{"short password", "admin", "short", entity.RoleAdmin, entity.ErrInvalidInput},
		{"unknown role", "admin", "long-enough", "root", entity.ErrInvalidInput},
		{"empty username", "", "long-enough", entity.RoleAdmin, entity.ErrInvalidInput},
		{"admin", "admin", "long-enough", entity.RoleAdmin, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := auth.EnsureUser(ctx, c.username, c.password, c.role, nil)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}

	first, _ := users.FindByUsername(ctx, "admin")
	if _, err := auth.EnsureUser(ctx, "admin", "another-password", entity.RoleAdmin, nil); err != nil {
		t.Fatal(err)
	}
	second, _ := users.FindByUsername(ctx, "admin")
	if first.ID != second.ID || first.PasswordHash == second.PasswordHash {
		t.Fatalf("EnsureUser must reset the password of the existing account")
	}
}
