package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/botyak1234/marketplace-task/models"
	"github.com/botyak1234/marketplace-task/repositories"
	"github.com/botyak1234/marketplace-task/utils"
)

// TokenIssuer turns an authenticated user into an opaque signed token. The
// service never inspects token internals.
type TokenIssuer interface {
	Issue(userID uint, role models.Role) (string, error)
}

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// UserService handles registration, login and points lookup. Thin by design:
// it delegates to the repository and the hasher and carries no task logic.
type UserService struct {
	db     *gorm.DB
	users  *repositories.UserRepository
	issuer TokenIssuer
}

func NewUserService(db *gorm.DB, users *repositories.UserRepository, issuer TokenIssuer) *UserService {
	return &UserService{db: db, users: users, issuer: issuer}
}

// Register creates a regular account with zero points. A username that is
// already registered is a conflict; the unique index backs up the check.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !reUsername.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-50 characters of letters, digits or underscore", ErrInvalidArgument)
	}
	if len(password) < 4 {
		return nil, fmt.Errorf("%w: password must be at least 4 characters", ErrInvalidArgument)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		Role:     models.RoleUser,
		Points:   0,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed token. Unknown usernames
// and wrong passwords fail identically so the endpoint cannot be used to
// enumerate accounts.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", ErrRuleViolation)
		}
		return "", err
	}
	if !utils.VerifyPassword(password, user.Password) {
		return "", fmt.Errorf("%w: invalid credentials", ErrRuleViolation)
	}
	return s.issuer.Issue(user.ID, user.Role)
}

// GetPoints returns the user's current points balance.
func (s *UserService) GetPoints(ctx context.Context, userID uint) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.Points, nil
}
