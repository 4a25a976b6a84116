// Package token issues and verifies the signed bearer tokens that carry a
// subject identity. Access tokens are only honored while the refresh-token
// record they were minted under is still alive, so revoking the refresh
// token invalidates every access token derived from it.
package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayria/accounts-api/internal/config"
	"github.com/ayria/accounts-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// RefreshTokenGetter is the slice of the refresh-token store that Verify
// needs to bind an access token to its originating record.
type RefreshTokenGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.RefreshToken, error)
}

type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		secret:     []byte(cfg.TokenSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// CreateOptions holds the optional claims for Create. RefID is included
// (stringified) only when positive; Issuer only when non-empty; Fresh is
// carried on access tokens only.
type CreateOptions struct {
	RefID       int64
	Fresh       bool
	Issuer      string
	ExtraClaims map[string]interface{}
}

// Create mints a signed HS256 token for the given subject. The subject must
// be a string or integer. ExtraClaims are merged last, so a colliding key
// overrides the reserved claim it shadows (last-write-wins).
func (s *Service) Create(subject interface{}, typ Type, opts CreateOptions) (string, error) {
	switch subject.(type) {
	case string, int, int64:
	default:
		return "", domain.InvalidArgument("subject must be a string or integer")
	}
	if typ != TypeAccess && typ != TypeRefresh {
		return "", domain.InvalidArgument(`token type must be "access" or "refresh"`)
	}

	now := time.Now()
	ttl := s.accessTTL
	if typ == TypeRefresh {
		ttl = s.refreshTTL
	}

	claims := jwt.MapClaims{
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"type": string(typ),
	}
	if typ == TypeAccess {
		claims["fresh"] = opts.Fresh
	}
	if opts.RefID > 0 {
		claims["ref_id"] = strconv.FormatInt(opts.RefID, 10)
	}
	if opts.Issuer != "" {
		claims["iss"] = opts.Issuer
	}
	for k, v := range opts.ExtraClaims {
		claims[k] = v
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify authenticates a bearer access token that must be backed by a live
// refresh-token record. It returns the id portion of the token's subject.
func (s *Service) Verify(ctx context.Context, tokenStr, subjectPrefix string, store RefreshTokenGetter) (string, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrAccessTokenExpired
		}
		return "", domain.ErrInvalidToken
	}

	id, err := subjectID(claims, subjectPrefix)
	if err != nil {
		return "", err
	}

	if claims["type"] != string(TypeAccess) {
		return "", domain.ErrTokenTypeInvalid
	}

	refID, ok := claims["ref_id"].(string)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	recordID, err := strconv.ParseInt(refID, 10, 64)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	record, err := store.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrInvalidRefreshToken
		}
		return "", err
	}
	if !record.IsActive {
		return "", domain.ErrInvalidRefreshToken
	}
	if time.Now().After(record.ExpiresAt(s.refreshTTL)) {
		return "", domain.ErrInvalidToken
	}

	return id, nil
}

// VerifyAccess checks signature, expiry, subject prefix, and token type, but
// does not consult the refresh-token store. For contexts that do not need
// revocation binding.
func (s *Service) VerifyAccess(tokenStr, subjectPrefix string) (string, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrAccessTokenExpired
		}
		return "", domain.ErrInvalidToken
	}

	id, err := subjectID(claims, subjectPrefix)
	if err != nil {
		return "", err
	}

	if claims["type"] != string(TypeAccess) {
		return "", domain.ErrTokenTypeInvalid
	}

	return id, nil
}

// VerifyRefresh checks signature, expiry, and that the token is of refresh
// type, returning the full claim set.
func (s *Service) VerifyRefresh(tokenStr string) (jwt.MapClaims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrRefreshExpired
		}
		return nil, domain.ErrInvalidToken
	}

	if claims["type"] != string(TypeRefresh) {
		return nil, domain.ErrTokenTypeInvalid
	}

	return claims, nil
}

func (s *Service) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// subjectID validates that sub has the form "<prefix>-<id>" and returns the
// id portion.
func subjectID(claims jwt.MapClaims, prefix string) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", domain.ErrInvalidToken
	}

	parts := strings.Split(sub, "-")
	if len(parts) < 2 || parts[0] != prefix {
		return "", domain.ErrInvalidToken
	}
	return parts[1], nil
}
