package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayria/accounts-api/internal/config"
	"github.com/ayria/accounts-api/internal/domain"
	"github.com/ayria/accounts-api/internal/repository"
	"github.com/ayria/accounts-api/internal/security"
	"github.com/ayria/accounts-api/internal/token"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// subjectPrefix tags token subjects as user identities ("USER-<id>").
const subjectPrefix = "USER"

type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	tokens    *token.Service
	hasher    security.PasswordHasher
	cfg       *config.Config
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	tokens *token.Service,
	hasher security.PasswordHasher,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		hasher:    hasher,
		cfg:       cfg,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type AuthResult struct {
	User         *domain.User
	RefreshToken *domain.RefreshToken
	AccessToken  string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailExists
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and opens a session: a persisted refresh token
// plus an access token bound to it. Unknown email and wrong password produce
// the same error so callers cannot tell which check failed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	record, err := s.createRefreshToken(ctx, user, input)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.mintAccessToken(user.ID, record.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, RefreshToken: record, AccessToken: accessToken}, nil
}

// Refresh mints a new access token against an existing refresh-token record.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*AuthResult, error) {
	record, err := s.tokenRepo.GetByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRefreshNotFound
		}
		return nil, err
	}

	if time.Now().After(record.ExpiresAt(s.cfg.RefreshTokenTTL)) {
		return nil, domain.ErrRefreshExpired
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		// Referential integrity means this only fires on store corruption.
		return nil, fmt.Errorf("refresh token %d references user %d: %w", record.ID, record.UserID, err)
	}

	accessToken, err := s.mintAccessToken(user.ID, record.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, RefreshToken: record, AccessToken: accessToken}, nil
}

// Logout deactivates every refresh token the user owns, which also kills all
// access tokens minted under them. Idempotent.
func (s *AuthService) Logout(ctx context.Context, user *domain.User) error {
	return s.tokenRepo.DeactivateAllForUser(ctx, user.ID)
}

// GetCurrentUser resolves an Authorization header value ("<scheme> <token>")
// to an active user.
func (s *AuthService) GetCurrentUser(ctx context.Context, authHeader string) (*domain.User, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 {
		return nil, domain.ErrInvalidAuthHeader
	}

	idStr, err := s.tokens.Verify(ctx, parts[1], subjectPrefix, s.tokenRepo)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrUserDeactivated
	}

	return user, nil
}

func (s *AuthService) createRefreshToken(ctx context.Context, user *domain.User, input LoginInput) (*domain.RefreshToken, error) {
	signed, err := s.tokens.Create(user.ID, token.TypeRefresh, token.CreateOptions{})
	if err != nil {
		return nil, err
	}

	record := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     signed,
		IsActive:  true,
		CreatedAt: time.Now(),
	}

	if input.IPAddress != "" || input.UserAgent != "" {
		info, err := json.Marshal(map[string]string{
			"ip_address": input.IPAddress,
			"user_agent": input.UserAgent,
		})
		if err != nil {
			return nil, err
		}
		record.ClientInfo = datatypes.JSON(info)
	}

	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *AuthService) mintAccessToken(userID, refID int64) (string, error) {
	return s.tokens.Create(
		fmt.Sprintf("%s-%d", subjectPrefix, userID),
		token.TypeAccess,
		token.CreateOptions{RefID: refID, Issuer: s.cfg.TokenIssuer},
	)
}
