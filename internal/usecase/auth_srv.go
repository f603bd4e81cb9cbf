package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/dto/response"
	"drone-delivery/pkg/oauth"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStateTTL = 10 * time.Minute

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	GoogleLoginURL(role string) (string, error)
	GoogleCallback(ctx context.Context, code, state string) (*response.AuthResponse, error)
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	repo     *repository.Repository // user + token deny-list
	provider OAuthProvider
	config   *utils.Config
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	provider OAuthProvider,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		provider: provider,
		config:   config,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)
	role := entity.RoleCustomer
	if req.Role != "" {
		role = entity.UserRole(req.Role)
	}

	// 2. Email must be free
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "User with this email already exists")
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Save user
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: &hashed,
		Role:         role,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "User with this email already exists")
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	// 5. Sign in straight away
	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find user: %w", err)
	}

	// Unknown email, OAuth-only account, bad password and role mismatch all look the same
	if user == nil || user.PasswordHash == nil {
		s.log.Warn("Login for unknown or password-less account", zap.String("email", email))
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}
	if !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}
	if req.Role != "" && entity.UserRole(req.Role) != user.Role {
		s.log.Warn("Login role mismatch",
			zap.String("user_id", user.ID.String()),
			zap.String("requested_role", req.Role))
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load profile", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// Logout revokes the token id until the token's own expiry.
func (s *authService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ID == "" {
		return newError(ErrUnauthorized, "Invalid token")
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}

	if err := s.repo.Token.Revoke(ctx, claims.ID, ttl); err != nil {
		s.log.Error("Failed to revoke token", zap.Error(err), zap.String("user_id", claims.UserID))
		return fmt.Errorf("revoke token: %w", err)
	}

	s.log.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

func (s *authService) GoogleLoginURL(role string) (string, error) {
	if !s.provider.Enabled() {
		return "", newError(ErrUnavailable, "Google sign-in is not configured")
	}
	if role == "" {
		role = string(entity.RoleCustomer)
	}
	if !entity.UserRole(role).Valid() {
		return "", newError(ErrValidation, "role must be one of: customer, admin")
	}

	state, err := oauth.SignState(s.config.JWT.Secret, role, oauthStateTTL)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}

	return s.provider.AuthCodeURL(state), nil
}

// GoogleCallback finds the user by Google id, then by verified email (linking
// the id), and otherwise creates a customer account without a password.
func (s *authService) GoogleCallback(ctx context.Context, code, state string) (*response.AuthResponse, error) {
	if !s.provider.Enabled() {
		return nil, newError(ErrUnavailable, "Google sign-in is not configured")
	}
	if code == "" {
		return nil, newError(ErrValidation, "missing authorization code")
	}

	rawRole, err := oauth.VerifyState(s.config.JWT.Secret, state)
	if err != nil {
		s.log.Warn("Rejected oauth state", zap.Error(err))
		return nil, newError(ErrUnauthorized, "Invalid OAuth state")
	}
	role := entity.UserRole(rawRole)

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.log.Warn("Google code exchange failed", zap.Error(err))
		return nil, newError(ErrUnauthorized, "Google authentication failed")
	}

	user, err := s.repo.User.FindByGoogleID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("find user by google id: %w", err)
	}

	if user == nil {
		// Only a verified email may link or register an account
		if !profile.EmailVerified {
			s.log.Warn("Refused google login with unverified email", zap.String("google_id", profile.ID))
			return nil, newError(ErrUnauthorized, "Google account email is not verified")
		}

		user, err = s.repo.User.FindByEmail(ctx, normalizeEmail(profile.Email))
		if err != nil {
			return nil, fmt.Errorf("find user by email: %w", err)
		}

		if user != nil {
			// Link to the existing password account
			user.GoogleID = &profile.ID
			user.UpdatedAt = time.Now()
			if err := s.repo.User.Update(ctx, user); err != nil {
				s.log.Error("Failed to link google account", zap.Error(err), zap.String("user_id", user.ID.String()))
				return nil, fmt.Errorf("link google account: %w", err)
			}
			s.log.Info("Google account linked", zap.String("user_id", user.ID.String()))
		}
	}

	if user == nil {
		if role == entity.RoleAdmin {
			s.log.Warn("Refused admin sign-up through google", zap.String("email", profile.Email))
			return nil, newError(ErrForbidden, "Admin accounts cannot be created through Google sign-in")
		}

		user, err = s.createOAuthUser(ctx, profile)
		if err != nil {
			return nil, err
		}
	}

	if user.Role != role {
		s.log.Warn("Google login role mismatch",
			zap.String("user_id", user.ID.String()),
			zap.String("requested_role", string(role)))
		return nil, newError(ErrUnauthorized, "Account does not have the requested role")
	}

	return s.issueToken(user)
}

// EnsureAdmin seeds the configured admin account when no admin exists yet.
func (s *authService) EnsureAdmin(ctx context.Context) error {
	cfg := s.config.Admin
	if cfg.Email == "" || cfg.Password == "" {
		s.log.Debug("Admin seed skipped, no credentials configured")
		return nil
	}

	count, err := s.repo.User.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	admin := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         cfg.Name,
		Email:        normalizeEmail(cfg.Email),
		PasswordHash: &hashed,
		Role:         entity.RoleAdmin,
	}

	if err := s.repo.User.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Warn("Admin seed email already taken by a non-admin account", zap.String("email", admin.Email))
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	s.log.Info("Default admin created", zap.String("email", admin.Email))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createOAuthUser(ctx context.Context, profile *oauth.GoogleUser) (*entity.User, error) {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = profile.Email
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:     name,
		Email:    normalizeEmail(profile.Email),
		Role:     entity.RoleCustomer,
		GoogleID: &profile.ID,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create google user", zap.Error(err), zap.String("email", user.Email))
		return nil, fmt.Errorf("create google user: %w", err)
	}

	s.log.Info("User registered through google", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (*response.AuthResponse, error) {
	ttl := time.Duration(s.config.JWT.ExpiryHours) * time.Hour
	token, claims, err := utils.GenerateToken(s.config.JWT.Secret, ttl, user.ID, user.Email, string(user.Role))
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("sign token: %w", err)
	}

	resp := response.AuthToResponse(user, token, claims.ExpiresAt.Time)
	return &resp, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
