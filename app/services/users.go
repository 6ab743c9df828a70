package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/notifications"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/pkg/rbac"
)

const msgAlreadyRequested = "You have already requested, wait to verify your proposal"

// RegisterInput is the optional profile sent on first sign-in.
type RegisterInput struct {
	Name  string `json:"name"  validate:"max=255"`
	Image string `json:"image" validate:"max=1024"`
}

// RoleView is the body of GET /users/role/{email}. Role is omitted for
// unknown users.
type RoleView struct {
	Role models.Role `json:"role,omitempty"`
}

type UserService struct {
	users    repositories.UserRepository
	notifier Notifier
	now      clock
}

func NewUserService(users repositories.UserRepository, notifier Notifier) *UserService {
	return &UserService{users: users, notifier: notifier, now: time.Now}
}

// Register returns the user stored under email, creating a customer record
// on first contact. The bool reports whether this call created it.
func (s *UserService) Register(ctx context.Context, email string, in RegisterInput) (*models.User, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, false, badRequest("email is required")
	}

	u, created, err := s.users.CreateIfAbsent(ctx, models.User{
		Email:     email,
		Name:      in.Name,
		Image:     in.Image,
		Role:      models.RoleCustomer,
		Timestamp: s.now().UnixMilli(),
	})
	if err != nil {
		return nil, false, internal("register user", err)
	}
	if created && s.notifier != nil {
		s.notifier.SendAsync(ctx, "", notifications.Registered{})
	}
	return u, created, nil
}

// RequestUpgrade marks the user as waiting for an admin to review a role
// change. Asking twice, or asking without having signed in, is rejected.
func (s *UserService) RequestUpgrade(ctx context.Context, email string) (models.UpdateResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return models.UpdateResult{}, badRequest(msgAlreadyRequested)
	case err != nil:
		return models.UpdateResult{}, internal("find user", err)
	}
	if u.Status == models.StatusRequested {
		return models.UpdateResult{}, badRequest(msgAlreadyRequested)
	}

	res, err := s.users.SetStatus(ctx, email, models.StatusRequested)
	if err != nil {
		return models.UpdateResult{}, internal("request upgrade", err)
	}
	return res, nil
}

// ListExcept returns every user but the one with email.
func (s *UserService) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	users, err := s.users.ListExcept(ctx, email)
	if err != nil {
		return nil, internal("list users", err)
	}
	return users, nil
}

// GrantRole sets the user's role and marks the request verified.
func (s *UserService) GrantRole(ctx context.Context, email, role string) (models.UpdateResult, error) {
	r := models.Role(role)
	if !r.Valid() {
		return models.UpdateResult{}, badRequest("role must be one of customer, seller, admin")
	}

	res, err := s.users.SetRole(ctx, email, r, models.StatusVerified)
	if err != nil {
		return models.UpdateResult{}, internal("grant role", err)
	}
	return res, nil
}

// RoleOf implements rbac.RoleLookup. It always reads the stored record.
func (s *UserService) RoleOf(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return "", fmt.Errorf("%w: %w", rbac.ErrUnknownUser, err)
	case err != nil:
		return "", err
	}
	return string(u.Role), nil
}

// GetRole reports the stored role. Unknown users yield an empty view.
func (s *UserService) GetRole(ctx context.Context, email string) (RoleView, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return RoleView{}, nil
	}
	if err != nil {
		return RoleView{}, internal("get role", err)
	}
	return RoleView{Role: u.Role}, nil
}
