package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lonepengu/backend/internal/domain"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	name     *string
	provider domain.AuthProvider
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	name := "Test User"
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		name:     &name,
		provider: domain.ProviderEmail,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithName sets the display name
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = &name
	return b
}

// WithProvider sets the auth provider
func (b *UserBuilder) WithProvider(provider domain.AuthProvider) *UserBuilder {
	b.provider = provider
	return b
}

// Build creates the user (with its preferences row) in the database
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		Name:         b.name,
		AuthProvider: b.provider,
		CreatedAt:    time.Now(),
		LastLogin:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(domain.DefaultPreferences(user.ID)).Error; err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}

	return user
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Success      bool   `json:"success"`
	UserID       string `json:"user_id"`
	IsNewUser    bool   `json:"is_new_user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
	User         struct {
		ID    string  `json:"id"`
		Email string  `json:"email"`
		Name  *string `json:"name"`
	} `json:"user"`
}

// Login performs a login through the API and returns the parsed response.
func Login(t *testing.T, ts *TestServer, email string) *LoginResponse {
	t.Helper()

	reqBody := map[string]string{
		"email":         email,
		"auth_provider": "email",
		"name":          "Test User",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.Server.URL+"/api/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	return &loginResp
}

// AuthedRequest performs an HTTP request with a bearer token against the
// test server and returns the raw response.
func AuthedRequest(t *testing.T, ts *TestServer, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
