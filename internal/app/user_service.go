package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userRepo secondary.UserRepository
	activity *Activity
	cost     int
}

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(userRepo secondary.UserRepository, activity *Activity) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
		activity: activity,
		cost:     bcrypt.DefaultCost,
	}
}

// CreateUser creates a new user with a hashed password.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req primary.CreateUserRequest) (*primary.User, error) {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	guardCtx := access.CreateUserContext{
		Username:       username,
		FullName:       req.FullName,
		Password:       req.Password,
		Role:           req.Role,
		UsernameExists: exists,
	}
	if result := access.CanCreateUser(guardCtx); !result.Allowed {
		return nil, invalid(result.Reason)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	id, err := s.userRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	record := &secondary.UserRecord{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, record); err != nil {
		return nil, duplicateOr(err, fmt.Sprintf("username %s already exists", username), "create user")
	}

	s.activity.Record(ctx, actionCreate, moduleUsers, "Usuario %s (%s) creado con rol %s", username, record.ID, req.Role)
	return recordToUser(record), nil
}

// GetUser retrieves a user by ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID string) (*primary.User, error) {
	record, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return recordToUser(record), nil
}

// ListUsers lists users with optional filters.
func (s *UserServiceImpl) ListUsers(ctx context.Context, filters primary.UserFilters) ([]*primary.User, error) {
	records, err := s.userRepo.List(ctx, secondary.UserFilters{
		Role:            filters.Role,
		IncludeInactive: filters.IncludeInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*primary.User, len(records))
	for i, r := range records {
		users[i] = recordToUser(r)
	}
	return users, nil
}

// UpdateProfile changes name and email. Auditors may edit anyone; others only themselves.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req primary.UpdateProfileRequest) error {
	actor, _ := ctxutil.ActorFromContext(ctx)
	if actor.UserID != req.UserID {
		if err := requireRole(actor.Role, access.RoleAuditor); err != nil {
			return err
		}
	}
	if strings.TrimSpace(req.FullName) == "" {
		return invalid("missing required fields: full name")
	}

	if err := s.userRepo.UpdateProfile(ctx, req.UserID, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Email)); err != nil {
		return err
	}
	s.activity.Record(ctx, actionEdit, moduleUsers, "Perfil de %s actualizado", req.UserID)
	return nil
}

// ChangeRole changes a user's global role.
func (s *UserServiceImpl) ChangeRole(ctx context.Context, userID, role string) error {
	actor, _ := ctxutil.ActorFromContext(ctx)
	if err := requireRole(actor.Role, access.RoleAuditor); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	guardCtx := access.ChangeRoleContext{ActorID: actor.UserID, TargetID: userID, NewRole: role}
	if result := access.CanChangeRole(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.activity.Record(ctx, actionChangeRole, moduleUsers, "Rol de %s: %s -> %s", user.Username, user.Role, role)
	return nil
}

// DeactivateUser retires a user. Users are never deleted.
func (s *UserServiceImpl) DeactivateUser(ctx context.Context, userID string) error {
	actor, _ := ctxutil.ActorFromContext(ctx)
	if err := requireRole(actor.Role, access.RoleAuditor); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	guardCtx := access.DeactivateUserContext{ActorID: actor.UserID, TargetID: userID, IsActive: user.IsActive}
	if result := access.CanDeactivateUser(guardCtx); !result.Allowed {
		return invalid(result.Reason)
	}

	if err := s.userRepo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.activity.Record(ctx, actionDeactivate, moduleUsers, "Usuario %s desactivado", user.Username)
	return nil
}

// ActivateUser reactivates a retired user.
func (s *UserServiceImpl) ActivateUser(ctx context.Context, userID string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsActive {
		return invalid(fmt.Sprintf("user %s is already active", userID))
	}

	if err := s.userRepo.SetActive(ctx, userID, true); err != nil {
		return err
	}
	s.activity.Record(ctx, actionActivate, moduleUsers, "Usuario %s activado", user.Username)
	return nil
}

// ResetPassword stores a new password for a user.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if err := requireRole(ctxutil.ActorRole(ctx), access.RoleAuditor); err != nil {
		return err
	}
	if result := access.CheckPassword(newPassword); !result.Allowed {
		return invalid(result.Reason)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.activity.Record(ctx, actionResetPass, moduleUsers, "Contraseña de %s restablecida", user.Username)
	return nil
}

// Authenticate checks credentials. Unknown users, inactive users and wrong
// passwords all return ErrInvalidCredentials.
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*primary.User, error) {
	record, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !record.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return recordToUser(record), nil
}

// LookupActor resolves an active user by username without a password.
// Used by the CLI, where the operator chooses the acting user.
func (s *UserServiceImpl) LookupActor(ctx context.Context, username string) (*primary.User, error) {
	record, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if !record.IsActive {
		return nil, fmt.Errorf("%w: user %s is inactive", ErrForbidden, username)
	}
	return recordToUser(record), nil
}

func (s *UserServiceImpl) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func recordToUser(r *secondary.UserRecord) *primary.User {
	return &primary.User{
		ID:        r.ID,
		Username:  r.Username,
		FullName:  r.FullName,
		Email:     r.Email,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

// Ensure UserServiceImpl implements the interface
var _ primary.UserService = (*UserServiceImpl)(nil)
