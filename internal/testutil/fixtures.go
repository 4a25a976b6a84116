package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/ayria/accounts-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	firstName string
	lastName  string
	email     string
	password  string
	inactive  bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		firstName: "Test",
		lastName:  "User",
		email:     fmt.Sprintf("testuser_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithName sets the first and last name
func (b *UserBuilder) WithName(first, last string) *UserBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// Deactivated marks the user inactive
func (b *UserBuilder) Deactivated() *UserBuilder {
	b.inactive = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		FirstName:    b.firstName,
		LastName:     b.lastName,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		IsActive:     !b.inactive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// RefreshTokenBuilder creates refresh-token rows directly in the database
type RefreshTokenBuilder struct {
	user      *domain.User
	token     string
	inactive  bool
	createdAt time.Time
}

// NewRefreshTokenBuilder creates a new RefreshTokenBuilder with default values
func NewRefreshTokenBuilder() *RefreshTokenBuilder {
	return &RefreshTokenBuilder{
		token:     fmt.Sprintf("refresh-%s", uuid.New().String()),
		createdAt: time.Now(),
	}
}

// ForUser sets the owning user
func (b *RefreshTokenBuilder) ForUser(user *domain.User) *RefreshTokenBuilder {
	b.user = user
	return b
}

// WithToken sets the raw token string
func (b *RefreshTokenBuilder) WithToken(token string) *RefreshTokenBuilder {
	b.token = token
	return b
}

// Deactivated marks the token revoked
func (b *RefreshTokenBuilder) Deactivated() *RefreshTokenBuilder {
	b.inactive = true
	return b
}

// CreatedAt sets the creation timestamp, which determines expiry
func (b *RefreshTokenBuilder) CreatedAt(ts time.Time) *RefreshTokenBuilder {
	b.createdAt = ts
	return b
}

// Build creates the refresh token in the database
func (b *RefreshTokenBuilder) Build(t *testing.T, db *gorm.DB) *domain.RefreshToken {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	token := &domain.RefreshToken{
		UserID:    b.user.ID,
		Token:     b.token,
		IsActive:  !b.inactive,
		CreatedAt: b.createdAt,
	}

	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}

	return token
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		IsActive  bool   `json:"is_active"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BuildAndLogin creates a user in the database and logs in via the API,
// returning the user and the issued tokens
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *AuthResponse) {
	t.Helper()

	user, rawPassword := b.Build(t, ts.DB.DB)

	reqBody := map[string]string{
		"email":    user.Email,
		"password": rawPassword,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.URL("/users/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, &authResp
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
