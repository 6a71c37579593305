package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/outlate/internal/idgen"
	"github.com/mmynk/outlate/internal/models"
	"github.com/mmynk/outlate/internal/storage"
)

type memUsers struct {
	byID map[string]*models.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == models.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
}

func newTestAuthenticator() *PasswordAuthenticator {
	return NewPasswordAuthenticator(newMemUsers(), idgen.NewCounter()).WithCost(bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()

	user, err := a.Register(ctx, " Alex@Example.com", "Alex Johnson", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	got, err := a.Authenticate(ctx, "alex@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "alex@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator()
	_, err := a.Register(ctx, "alex@example.com", "Alex", "password1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		display  string
		password string
		want     error
	}{
		{"duplicate email", "ALEX@example.com", "Alex", "password2", ErrEmailExists},
		{"short password", "sam@example.com", "Sam", "short", ErrWeakPassword},
		{"bad email", "not-an-email", "Sam", "password1", ErrInvalidEmail},
		{"blank name", "sam@example.com", "  ", "password1", ErrMissingName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, tt.display, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-7", Email: "jordan@example.com", DisplayName: "Jordan"}

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID)
	assert.Equal(t, "jordan@example.com", claims.Email)
	assert.Equal(t, "Jordan", claims.DisplayName)
	assert.Equal(t, "user-7", claims.Subject)
}

func TestJWTRejects(t *testing.T) {
	user := &models.User{ID: "user-7", Email: "jordan@example.com"}
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Generate(user)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
