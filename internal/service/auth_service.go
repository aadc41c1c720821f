package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/inficare/inficare/internal/domain"
	"github.com/inficare/inficare/internal/domain/profile"
	"github.com/inficare/inficare/pkg/auth"
	"github.com/inficare/inficare/pkg/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Age      int
	Gender   string

	// Optional vitals
	BloodGroup string
	Weight     string
	Height     string
}

type AuthService struct {
	userRepo    UserRepository
	profileRepo profile.Repository
	jwtManager  *auth.JWTManager
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAuthService(userRepo UserRepository, profileRepo profile.Repository, jwtManager *auth.JWTManager, collector *metrics.Collector, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		jwtManager:  jwtManager,
		metrics:     collector,
		log:         log,
	}
}

// Register creates the account and its demographic profile, then signs the
// user straight in (matching the registration flow's redirect to the
// dashboard).
func (s *AuthService) Register(ctx context.Context, cmd *RegisterCommand, ip string) (*domain.TokenPair, error) {
	if err := validateRegisterCommand(cmd); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(cmd.Name),
		Role:         domain.RolePatient,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	p := &profile.Profile{
		UserID:     user.ID,
		Name:       user.DisplayName,
		Email:      email,
		Phone:      strings.TrimSpace(cmd.Phone),
		Age:        cmd.Age,
		Gender:     cmd.Gender,
		BloodGroup: cmd.BloodGroup,
		Weight:     cmd.Weight,
		Height:     cmd.Height,
	}
	if err := s.profileRepo.Create(ctx, p); err != nil {
		// The account exists either way; a missing profile surfaces later
		// as a NotFound notice, not a failed registration.
		s.log.Error("failed to create profile", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.metrics.UsersRegisteredTotal.Inc()
	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}
	return s.authenticate(ctx, user, password, ip)
}

// LoginByUID backs the smart-card flow: the QR code carries only the user
// ID, the server resolves the login email itself.
func (s *AuthService) LoginByUID(ctx context.Context, userID uuid.UUID, password, ip string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}
	return s.authenticate(ctx, user, password, ip)
}

// LookupLoginEmail resolves a scanned user ID to a masked email so the
// login form can show who is signing in without exposing the address.
func (s *AuthService) LookupLoginEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", ErrUserNotFound
	}
	return maskEmail(user.Email), nil
}

// RefreshToken issues a new access token given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate user is still active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

func (s *AuthService) authenticate(ctx context.Context, user *domain.User, password, ip string) (*domain.TokenPair, error) {
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		// Record failed attempt; lock if threshold exceeded
		_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, false)
		s.log.Warn("failed login attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLoginAttempt(ctx, user.ID, true)

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *domain.User) (*domain.TokenPair, error) {
	claims := &domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	pair, err := s.jwtManager.GenerateTokenPair(claims)
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return pair, nil
}

func validateRegisterCommand(cmd *RegisterCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !strings.Contains(cmd.Email, "@") {
		errs = append(errs, "email is invalid")
	}
	if cmd.Age <= 0 || cmd.Age > 150 {
		errs = append(errs, "age must be between 1 and 150")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	return nil
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}
