package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Canned messages for forced login outcomes.
const (
	MsgBadRequest         = "Bad request"
	MsgInvalidCredentials = "Invalid username or password"
	MsgAccountLocked      = "Account is locked"
	MsgUserNotFound       = "User not found"
	MsgServerError        = "Internal server error"
	MsgUnavailable        = "Service temporarily unavailable"
)

var forcedOutcomes = map[int]string{
	http.StatusBadRequest:          MsgBadRequest,
	http.StatusUnauthorized:        MsgInvalidCredentials,
	http.StatusForbidden:           MsgAccountLocked,
	http.StatusNotFound:            MsgUserNotFound,
	http.StatusInternalServerError: MsgServerError,
	http.StatusServiceUnavailable:  MsgUnavailable,
}

// AuthConfig holds token secrets and lifetimes.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// AllowForcedResult honours LoginInput.ExpectedResult.
	AllowForcedResult bool
}

// Claims is the JWT payload for both token types.
type Claims struct {
	UserID   string           `json:"userId"`
	UserName string           `json:"userName"`
	Role     string           `json:"role"`
	Type     domain.TokenType `json:"type"`
	jwt.RegisteredClaims
}

// AuthService implements mock login and token handling.
type AuthService struct {
	repo   ports.AuthRepository
	cfg    AuthConfig
	events ports.EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.AuthRepository, cfg AuthConfig, events ports.EventPublisher, logger zerolog.Logger) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &AuthService{
		repo:   repo,
		cfg:    cfg,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies credentials, unless a forced outcome was requested and is
// allowed, in which case the matching ForcedStatusError is returned. An
// ExpectedResult of 200 or any unrecognised code runs real verification.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.LoginResult, error) {
	if s.cfg.AllowForcedResult {
		if msg, ok := forcedOutcomes[in.ExpectedResult]; ok {
			s.attempt(ctx, in, false)
			return nil, &domain.ForcedStatusError{Status: in.ExpectedResult, Message: msg}
		}
	}

	res, err := s.authenticate(ctx, in.UserName, in.Password)
	s.attempt(ctx, in, err == nil)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AuthService) authenticate(ctx context.Context, userName, password string) (*domain.LoginResult, error) {
	acc, err := s.repo.FindByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if !acc.Active {
		return nil, domain.ErrAccountLocked
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issue(acc)
	if err != nil {
		return nil, err
	}

	principal := domain.Principal{UserID: acc.ID, UserName: acc.UserName, Role: acc.Role}
	s.events.Publish(ctx, domain.EventAuthLogin, map[string]any{
		"userId":   acc.ID,
		"userName": acc.UserName,
		"role":     acc.Role,
	})
	s.logger.Info().
		Str("request_id", reqctx.RequestID(ctx)).
		Str("user_id", acc.ID).
		Str("user_name", acc.UserName).
		Msg("user logged in")

	return &domain.LoginResult{TokenPair: *pair, User: principal}, nil
}

func (s *AuthService) attempt(ctx context.Context, in ports.LoginInput, success bool) {
	s.events.Publish(ctx, domain.EventAuthAttempt, map[string]any{
		"userName":       in.UserName,
		"expectedResult": in.ExpectedResult,
		"success":        success,
	})
}

// Refresh re-issues both tokens from a valid refresh token whose account
// still exists and is active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret, domain.TokenRefresh)
	if err != nil {
		return nil, err
	}
	acc, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !acc.Active {
		return nil, domain.ErrInvalidToken
	}
	return s.issue(acc)
}

// Logout only records the event; tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context) error {
	s.events.Publish(ctx, domain.EventAuthLogout, map[string]any{
		"userId":    reqctx.UserID(ctx),
		"timestamp": s.now().Format(time.RFC3339),
	})
	return nil
}

// ValidateAccess verifies an access token and returns its principal.
func (s *AuthService) ValidateAccess(_ context.Context, token string) (*domain.Principal, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret, domain.TokenAccess)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{
		UserID:   claims.UserID,
		UserName: claims.UserName,
		Role:     claims.Role,
		Type:     claims.Type,
	}, nil
}

func (s *AuthService) issue(acc *domain.AuthUser) (*domain.TokenPair, error) {
	access, err := s.sign(acc, domain.TokenAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(acc, domain.TokenRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(acc *domain.AuthUser, typ domain.TokenType, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   acc.ID,
		UserName: acc.UserName,
		Role:     acc.Role,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *AuthService) parse(token, secret string, want domain.TokenType) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if claims.Type != want {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
