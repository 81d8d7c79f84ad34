package app

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/auditplus/internal/core/access"
	"github.com/example/auditplus/internal/ports/primary"
)

// ============================================================================
// Test Helper
// ============================================================================

func newTestUserService() (*UserServiceImpl, *mockUserRepository, *mockAuditLogWriter) {
	userRepo := newMockUserRepository()
	log := newMockAuditLogWriter()
	service := NewUserService(userRepo, NewActivity(log, nil))
	service.cost = bcrypt.MinCost
	userRepo.add("USR-001", "admin", access.RoleAuditor, true)
	userRepo.seq = 1
	return service, userRepo, log
}

// ============================================================================
// CreateUser Tests
// ============================================================================

func TestCreateUser_HashesPassword(t *testing.T) {
	service, userRepo, log := newTestUserService()

	user, err := service.CreateUser(auditorCtx(), primary.CreateUserRequest{
		Username: "jperez",
		Password: "secreto123",
		FullName: "Juan Pérez",
		Role:     "auditado",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stored := userRepo.users[user.ID]
	if stored.PasswordHash == "secreto123" || stored.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")) != nil {
		t.Error("expected hash to match the password")
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}
	if len(log.entries) != 1 || log.entries[0].Action != actionCreate {
		t.Errorf("expected one Crear entry, got %+v", log.entries)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.CreateUser(auditorCtx(), primary.CreateUserRequest{
		Username: "admin",
		Password: "secreto123",
		FullName: "Otro",
		Role:     "auditor",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateUser_ShortPassword(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.CreateUser(auditorCtx(), primary.CreateUserRequest{
		Username: "x",
		Password: "123",
		FullName: "X",
		Role:     "auditor",
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateUser_NonAuditorForbidden(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.CreateUser(actorCtx("USR-009", access.RoleSupervisor), primary.CreateUserRequest{
		Username: "x",
		Password: "secreto123",
		FullName: "X",
		Role:     "auditor",
	})

	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

// ============================================================================
// Role / Activation Tests
// ============================================================================

func TestChangeRole_OwnRoleRefused(t *testing.T) {
	service, _, _ := newTestUserService()

	err := service.ChangeRole(auditorCtx(), "USR-001", "auditado")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeactivateUser_ThenAuthenticateFails(t *testing.T) {
	service, userRepo, _ := newTestUserService()
	created, err := service.CreateUser(auditorCtx(), primary.CreateUserRequest{
		Username: "jperez", Password: "secreto123", FullName: "Juan", Role: "auditado",
	})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := service.DeactivateUser(auditorCtx(), created.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if userRepo.users[created.ID].IsActive {
		t.Error("expected user to be inactive")
	}

	_, err = service.Authenticate(auditorCtx(), "jperez", "secreto123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDeactivateUser_Self(t *testing.T) {
	service, _, _ := newTestUserService()

	err := service.DeactivateUser(auditorCtx(), "USR-001")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// ============================================================================
// Authenticate / LookupActor Tests
// ============================================================================

func TestAuthenticate(t *testing.T) {
	service, _, _ := newTestUserService()
	if _, err := service.CreateUser(auditorCtx(), primary.CreateUserRequest{
		Username: "jperez", Password: "secreto123", FullName: "Juan", Role: "auditado",
	}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid credentials", "jperez", "secreto123", false},
		{"wrong password", "jperez", "otra", true},
		{"unknown user", "nadie", "secreto123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Authenticate(auditorCtx(), tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("expected ErrInvalidCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Username != "jperez" {
				t.Errorf("expected jperez, got %s", user.Username)
			}
		})
	}
}

func TestLookupActor_Inactive(t *testing.T) {
	service, userRepo, _ := newTestUserService()
	userRepo.add("USR-050", "retirado", access.RoleAuditee, false)

	_, err := service.LookupActor(auditorCtx(), "retirado")

	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateProfile_OtherUserNeedsAuditor(t *testing.T) {
	service, userRepo, _ := newTestUserService()
	userRepo.add("USR-050", "campo", access.RoleFieldAuditor, true)

	err := service.UpdateProfile(actorCtx("USR-050", access.RoleFieldAuditor), primary.UpdateProfileRequest{
		UserID:   "USR-001",
		FullName: "Hackeado",
	})

	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := service.UpdateProfile(actorCtx("USR-050", access.RoleFieldAuditor), primary.UpdateProfileRequest{
		UserID:   "USR-050",
		FullName: "Campo Uno",
	}); err != nil {
		t.Fatalf("expected self edit to succeed, got %v", err)
	}
}
