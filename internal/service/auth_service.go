package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/dept-calendar-api/internal/models"
	appErrors "github.com/noah-isme/dept-calendar-api/pkg/errors"
)

// AuthConfig defines token settings.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	Audience          []string
}

// AuthService authenticates calendar editors against the configured accounts.
type AuthService struct {
	accounts  map[string]models.Account
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// ParseAccounts decodes entries of the form email:bcrypt-hash:ROLE[:Full Name].
func ParseAccounts(entries []string) ([]models.Account, error) {
	accounts := make([]models.Account, 0, len(entries))
	for i, entry := range entries {
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) < 3 {
			return nil, fmt.Errorf("account %d: expected email:hash:role", i+1)
		}
		email := strings.ToLower(strings.TrimSpace(parts[0]))
		role := models.UserRole(strings.ToUpper(strings.TrimSpace(parts[2])))
		switch role {
		case models.RoleAdmin, models.RoleEditor, models.RoleViewer:
		default:
			return nil, fmt.Errorf("account %d: unknown role %q", i+1, parts[2])
		}
		if email == "" || !strings.HasPrefix(parts[1], "$2") {
			return nil, fmt.Errorf("account %d: missing email or bcrypt hash", i+1)
		}
		account := models.Account{
			ID:           uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
			Email:        email,
			PasswordHash: parts[1],
			Role:         role,
			FullName:     email,
		}
		if len(parts) == 4 && strings.TrimSpace(parts[3]) != "" {
			account.FullName = strings.TrimSpace(parts[3])
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts []models.Account, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	byEmail := make(map[string]models.Account, len(accounts))
	for _, account := range accounts {
		byEmail[strings.ToLower(account.Email)] = account
	}
	return &AuthService{accounts: byEmail, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login authenticates an editor and returns a signed access token.
func (s *AuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, ok := s.accounts[req.Email]
	if !ok {
		s.logger.Info("login rejected", zap.String("reason", "unknown account"))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("reason", "password mismatch"), zap.String("user_id", account.ID))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(account, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	s.logger.Info("editor logged in", zap.String("user_id", account.ID), zap.String("role", string(account.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		User: models.UserInfo{
			ID:       account.ID,
			Email:    account.Email,
			FullName: account.FullName,
			Role:     account.Role,
		},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(account models.Account, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:   account.ID,
		Role:     account.Role,
		Email:    account.Email,
		FullName: account.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account.ID,
			Audience:  s.config.Audience,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}
