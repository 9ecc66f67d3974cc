package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/listing-microservice/internal/config"
	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/listing-microservice/internal/pkg/validator"
	"github.com/listing-microservice/internal/usecase/dto"
)

const adminRole = "admin"

// AdminClaims - claims сессионного токена администратора
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthUseCase - проверка API-ключа и сессии администратора
type AuthUseCase struct {
	apiKey       []byte
	adminUser    string
	passwordHash []byte
	secret       []byte
	sessionTTL   time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthUseCase - создание нового AuthUseCase. Пароль в открытом виде
// хешируется при старте; ADMIN_PASSWORD_HASH имеет приоритет.
func NewAuthUseCase(cfg config.AuthConfig, logger *zap.Logger) (*AuthUseCase, error) {
	uc := &AuthUseCase{
		apiKey:     []byte(cfg.APIKey),
		adminUser:  cfg.AdminUser,
		secret:     []byte(cfg.SessionSecret),
		sessionTTL: cfg.SessionTTL,
		logger:     logger,
		now:        time.Now,
	}
	if uc.sessionTTL <= 0 {
		uc.sessionTTL = 12 * time.Hour
	}

	switch {
	case cfg.AdminPasswordHash != "":
		uc.passwordHash = []byte(cfg.AdminPasswordHash)
	case cfg.AdminPassword != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
		uc.passwordHash = hash
	}

	return uc, nil
}

// LoginEnabled reports whether admin credentials and a signing secret are configured.
func (uc *AuthUseCase) LoginEnabled() bool {
	return uc.adminUser != "" && len(uc.passwordHash) > 0 && len(uc.secret) > 0
}

// CheckAPIKey compares key against the configured API key in constant time.
// An unset API key matches nothing.
func (uc *AuthUseCase) CheckAPIKey(key string) bool {
	if len(uc.apiKey) == 0 || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), uc.apiKey) == 1
}

// Authorize accepts either a valid API key or a valid admin bearer token.
func (uc *AuthUseCase) Authorize(apiKey, bearer string) error {
	if uc.CheckAPIKey(apiKey) {
		return nil
	}
	if bearer != "" {
		if _, err := uc.ValidateToken(bearer); err == nil {
			return nil
		}
	}
	return errors.ErrUnauthorized
}

// Login - вход администратора, выдаёт JWT (HS256)
func (uc *AuthUseCase) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if !uc.LoginEnabled() {
		return nil, errors.ErrFeatureDisabled.WithMessage("admin login is not configured")
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(uc.adminUser)) == 1
	passErr := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		uc.logger.Warn("Admin login failed", zap.String("username", req.Username))
		return nil, errors.ErrUnauthorized.WithMessage("invalid credentials")
	}

	now := uc.now()
	expiresAt := now.Add(uc.sessionTTL)
	claims := AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uc.adminUser,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		uc.logger.Error("Failed to sign session token", zap.Error(err))
		return nil, errors.ErrInternalServer
	}

	uc.logger.Info("Admin logged in", zap.String("username", uc.adminUser))
	return &dto.LoginResponse{Token: token, ExpiresAt: expiresAt.UTC()}, nil
}

// ValidateToken parses and verifies an admin session token.
func (uc *AuthUseCase) ValidateToken(tokenString string) (*AdminClaims, error) {
	if len(uc.secret) == 0 {
		return nil, errors.ErrUnauthorized
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return uc.secret, nil
	}, jwt.WithTimeFunc(uc.now))
	if err != nil || !token.Valid {
		return nil, errors.ErrUnauthorized.Wrap(err)
	}
	if claims.Role != adminRole {
		return nil, errors.ErrUnauthorized
	}

	return claims, nil
}
