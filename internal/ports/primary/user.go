// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI and HTTP layers drive the application.
package primary

import "context"

// UserService defines the primary port for user and credential operations.
type UserService interface {
	// CreateUser creates a new user with a hashed password.
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*User, error)

	// ListUsers lists users with optional filters.
	ListUsers(ctx context.Context, filters UserFilters) ([]*User, error)

	// UpdateProfile changes a user's full name and email.
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error

	// ChangeRole changes a user's global role.
	ChangeRole(ctx context.Context, userID, role string) error

	// DeactivateUser retires a user. Users are never deleted.
	DeactivateUser(ctx context.Context, userID string) error

	// ActivateUser reactivates a retired user.
	ActivateUser(ctx context.Context, userID string) error

	// ResetPassword replaces a user's password.
	ResetPassword(ctx context.Context, userID, newPassword string) error

	// Authenticate checks a username and password and returns the active user.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// LookupActor resolves an active user by username without a password check.
	// Used by the local CLI, which runs with the operator's own privileges.
	LookupActor(ctx context.Context, username string) (*User, error)
}

// CreateUserRequest contains parameters for creating a user.
type CreateUserRequest struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string
}

// UpdateProfileRequest contains parameters for updating a user profile.
type UpdateProfileRequest struct {
	UserID   string
	FullName string
	Email    string
}

// UserFilters contains filter options for listing users.
type UserFilters struct {
	Role            string
	IncludeInactive bool
}

// User is the public view of a user. The password hash never leaves the service.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}
