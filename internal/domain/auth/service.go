package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/tx"
	"woodline/internal/domain/access"
	"woodline/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
	}
}

// Service provides authentication and employee account logic.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Login authenticates the user and returns a shift access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.userRepo.GetByLogin(ctx, creds.Login)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		_ = s.userRepo.Update(ctx, user)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	eff := user.Effective()
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(
		user.ID.String(), user.Login, string(user.Role), eff.Strings(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	user.RecordSuccessfulLogin()
	_ = s.userRepo.Update(ctx, user)

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"login", user.Login,
		"role", user.Role)

	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, user, nil
}

// CreateUser creates a new employee account.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Login == "" {
		return nil, apperror.NewValidation("login is required").WithDetail("field", "login")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	if !access.IsValidRole(req.Role) {
		return nil, apperror.NewValidation("unknown role").WithDetail("role", string(req.Role))
	}
	if err := validatePermissions(req.CustomPermissions); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.Exists(ctx, req.Login)
	if err != nil {
		return nil, fmt.Errorf("check login exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("login already taken").WithDetail("login", req.Login)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Login, string(passwordHash), req.Role)
	user.FullName = req.FullName
	user.Phone = req.Phone
	user.CustomPermissions = req.CustomPermissions

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created",
		"user_id", user.ID,
		"login", user.Login,
		"role", user.Role)

	return user, nil
}

// UpdateUser updates an employee account.
func (s *Service) UpdateUser(ctx context.Context, userID id.ID, req UpdateUserRequest) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !access.IsValidRole(*req.Role) {
			return nil, apperror.NewValidation("unknown role").WithDetail("role", string(*req.Role))
		}
		user.Role = *req.Role
	}
	if req.SetCustomPermissions {
		if err := validatePermissions(req.CustomPermissions); err != nil {
			return nil, err
		}
		user.CustomPermissions = req.CustomPermissions
	}
	if req.Password != nil {
		if len(*req.Password) < s.config.PasswordMinLength {
			return nil, apperror.NewValidation(
				fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
			).WithDetail("field", "password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "user updated", "user_id", user.ID)
	return user, nil
}

// DeactivateUser disables an account without deleting history.
func (s *Service) DeactivateUser(ctx context.Context, userID id.ID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.NewNotFound("user", userID.String())
	}
	if user.Role == access.RoleOwner {
		return apperror.NewForbidden("owner account cannot be deactivated")
	}

	user.IsActive = false
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	logger.Info(ctx, "user deactivated", "user_id", user.ID, "login", user.Login)
	return nil
}

// GetUserByID retrieves a user.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.userRepo.List(ctx, filter)
}

func validatePermissions(perms []access.Permission) error {
	known := map[access.Permission]bool{}
	for _, p := range access.All() {
		known[p] = true
	}
	for _, p := range perms {
		if !known[p] {
			return apperror.NewValidation("unknown permission").WithDetail("permission", string(p))
		}
	}
	return nil
}
