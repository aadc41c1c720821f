package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/inficare/inficare/config"
	"github.com/inficare/inficare/internal/domain"
	"github.com/inficare/inficare/internal/domain/profile"
	"github.com/inficare/inficare/pkg/auth"
	"github.com/inficare/inficare/pkg/metrics"
)

// Prometheus collectors register globally; one instance serves the whole
// test binary.
var testCollector = metrics.NewCollector("inficare_test")

type userRepoMock struct {
	CreateFunc             func(ctx context.Context, u *domain.User) error
	GetByEmailFunc         func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateLoginAttemptFunc func(ctx context.Context, id uuid.UUID, success bool) error
	UpdatePasswordFunc     func(ctx context.Context, id uuid.UUID, hash string) error
}

func (m *userRepoMock) Create(ctx context.Context, u *domain.User) error {
	return m.CreateFunc(ctx, u)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *userRepoMock) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	return m.UpdateLoginAttemptFunc(ctx, id, success)
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.UpdatePasswordFunc(ctx, id, hash)
}

type profileRepoMock struct {
	CreateFunc      func(ctx context.Context, p *profile.Profile) error
	GetByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
}

func (m *profileRepoMock) Create(ctx context.Context, p *profile.Profile) error {
	return m.CreateFunc(ctx, p)
}

func (m *profileRepoMock) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return m.GetByUserIDFunc(ctx, userID)
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-with-enough-entropy",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "inficare-test",
	})
}

func newAuthService(users *userRepoMock, profiles *profileRepoMock) *AuthService {
	return NewAuthService(users, profiles, testJWTManager(), testCollector, zap.NewNop())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	var createdUser *domain.User
	var createdProfile *profile.Profile
	users := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) {
			return nil, ErrUserNotFound
		},
		CreateFunc: func(_ context.Context, u *domain.User) error {
			u.ID = uuid.New()
			createdUser = u
			return nil
		},
	}
	profiles := &profileRepoMock{
		CreateFunc: func(_ context.Context, p *profile.Profile) error {
			createdProfile = p
			return nil
		},
	}

	pair, err := newAuthService(users, profiles).Register(context.Background(), &RegisterCommand{
		Name:     "Asha Verma",
		Email:    "  Asha@Example.COM ",
		Password: "long-enough-password",
		Phone:    "9876543210",
		Age:      34,
		Gender:   "female",
	}, "127.0.0.1")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	require.NotNil(t, createdUser)
	assert.Equal(t, "asha@example.com", createdUser.Email)
	assert.Equal(t, domain.RolePatient, createdUser.Role)
	assert.True(t, createdUser.IsActive)

	require.NotNil(t, createdProfile)
	assert.Equal(t, createdUser.ID, createdProfile.UserID)
	assert.Equal(t, 34, createdProfile.Age)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	svc := newAuthService(&userRepoMock{}, &profileRepoMock{})

	_, err := svc.Register(context.Background(), &RegisterCommand{
		Email:    "not-an-email",
		Password: "short",
		Age:      -1,
	}, "127.0.0.1")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
}

func TestRegisterEmailTaken(t *testing.T) {
	users := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) {
			return &domain.User{}, nil
		},
	}

	_, err := newAuthService(users, &profileRepoMock{}).Register(context.Background(), &RegisterCommand{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "long-enough-password",
		Age:      34,
	}, "127.0.0.1")

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginSuccess(t *testing.T) {
	userID := uuid.New()
	var attemptSuccess *bool
	users := &userRepoMock{
		GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			assert.Equal(t, "asha@example.com", email)
			return &domain.User{
				ID:           userID,
				Email:        email,
				PasswordHash: hashOf(t, "long-enough-password"),
				Role:         domain.RolePatient,
				IsActive:     true,
			}, nil
		},
		UpdateLoginAttemptFunc: func(_ context.Context, _ uuid.UUID, success bool) error {
			attemptSuccess = &success
			return nil
		},
	}

	pair, err := newAuthService(users, &profileRepoMock{}).Login(context.Background(), " Asha@Example.com ", "long-enough-password", "127.0.0.1")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	require.NotNil(t, attemptSuccess)
	assert.True(t, *attemptSuccess)
}

func TestLoginWrongPassword(t *testing.T) {
	var attemptSuccess *bool
	users := &userRepoMock{
		GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: hashOf(t, "the-real-password"),
				IsActive:     true,
			}, nil
		},
		UpdateLoginAttemptFunc: func(_ context.Context, _ uuid.UUID, success bool) error {
			attemptSuccess = &success
			return nil
		},
	}

	_, err := newAuthService(users, &profileRepoMock{}).Login(context.Background(), "asha@example.com", "a-wrong-password", "127.0.0.1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotNil(t, attemptSuccess)
	assert.False(t, *attemptSuccess)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := &userRepoMock{
		GetByEmailFunc: func(context.Context, string) (*domain.User, error) {
			return nil, ErrUserNotFound
		},
	}

	_, err := newAuthService(users, &profileRepoMock{}).Login(context.Background(), "ghost@example.com", "whatever-password", "127.0.0.1")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLockedAccount(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	users := &userRepoMock{
		GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{
				ID:          uuid.New(),
				Email:       email,
				IsActive:    true,
				LockedUntil: &until,
			}, nil
		},
	}

	_, err := newAuthService(users, &profileRepoMock{}).Login(context.Background(), "asha@example.com", "long-enough-password", "127.0.0.1")

	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginByUID(t *testing.T) {
	userID := uuid.New()
	users := &userRepoMock{
		GetByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			assert.Equal(t, userID, id)
			return &domain.User{
				ID:           userID,
				Email:        "asha@example.com",
				PasswordHash: hashOf(t, "long-enough-password"),
				Role:         domain.RolePatient,
				IsActive:     true,
			}, nil
		},
		UpdateLoginAttemptFunc: func(context.Context, uuid.UUID, bool) error { return nil },
	}

	pair, err := newAuthService(users, &profileRepoMock{}).LoginByUID(context.Background(), userID, "long-enough-password", "127.0.0.1")

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLookupLoginEmailMasks(t *testing.T) {
	users := &userRepoMock{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.User, error) {
			return &domain.User{Email: "asha@example.com"}, nil
		},
	}

	masked, err := newAuthService(users, &profileRepoMock{}).LookupLoginEmail(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, "a***@example.com", masked)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	user := &domain.User{
		ID:       userID,
		Email:    "asha@example.com",
		Role:     domain.RolePatient,
		IsActive: true,
	}
	users := &userRepoMock{
		GetByIDFunc: func(context.Context, uuid.UUID) (*domain.User, error) {
			return user, nil
		},
	}
	svc := newAuthService(users, &profileRepoMock{})

	jwtManager := testJWTManager()
	pair, err := jwtManager.GenerateTokenPair(&domain.Claims{UserID: userID, Email: user.Email, Role: user.Role})
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token must not pass as a refresh token.
	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", maskEmail("asha@example.com"))
	assert.Equal(t, "***@example.com", maskEmail("a@example.com"))
	assert.Equal(t, "***", maskEmail("not-an-email"))
}
