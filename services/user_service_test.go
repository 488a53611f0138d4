package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/repositories"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID uint, role models.Role) (string, error) {
	return fmt.Sprintf("token-%d-%s", userID, role), nil
}

func setupUserService(t *testing.T) (*UserService, *repositories.UserRepository) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repositories.NewUserRepository(db)
	return NewUserService(db, users, stubIssuer{}), users
}

func TestRegister(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleUser || user.Points != 0 {
		t.Fatalf("new user must be a User with 0 points, got %s / %d", user.Role, user.Points)
	}
	if user.Password == "secret" {
		t.Fatalf("password stored in plaintext")
	}

	// Same username again is a conflict.
	if _, err := svc.Register(ctx, "alice", "other"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "secret"},
		{"username with spaces", "bad name", "secret"},
		{"username with symbols", "bad!name", "secret"},
		{"password too short", "goodname", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.username, tc.password); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := setupUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	// Wrong password and unknown username must fail identically so the
	// endpoint cannot be used to enumerate accounts.
	_, errWrongPass := svc.Login(ctx, "alice", "nope")
	_, errNoUser := svc.Login(ctx, "nobody", "nope")
	if !errors.Is(errWrongPass, ErrRuleViolation) || !errors.Is(errNoUser, ErrRuleViolation) {
		t.Fatalf("expected ErrRuleViolation for both, got %v / %v", errWrongPass, errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("failure modes distinguishable: %q vs %q", errWrongPass.Error(), errNoUser.Error())
	}
}

func TestGetPoints(t *testing.T) {
	svc, users := setupUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	points, err := svc.GetPoints(ctx, user.ID)
	if err != nil || points != 0 {
		t.Fatalf("expected 0 points, got %d (%v)", points, err)
	}

	user.Points = 250
	if err := users.Save(ctx, user); err != nil {
		t.Fatalf("save: %v", err)
	}
	points, err = svc.GetPoints(ctx, user.ID)
	if err != nil || points != 250 {
		t.Fatalf("expected 250 points, got %d (%v)", points, err)
	}

	if _, err := svc.GetPoints(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
