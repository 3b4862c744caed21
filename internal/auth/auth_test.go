package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/models"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperr.ErrAlreadyExists
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *memUsers) UserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, apperr.ErrNotFound
}

func newTestService() *Service {
	return NewService(newMemUsers(), NewTokenIssuer("test-secret", time.Hour))
}

func TestToken_RoundTrip(t *testing.T) {
	t.Parallel()
	iss := NewTokenIssuer("secret", time.Hour)

	tok, err := iss.Issue(Session{UserID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	sess, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, &Session{UserID: "u1", Email: "a@b.c"}, sess)
}

func TestToken_Expired(t *testing.T) {
	t.Parallel()
	iss := NewTokenIssuer("secret", -time.Second)

	tok, err := iss.Issue(Session{UserID: "u1"})
	require.NoError(t, err)

	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestToken_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := NewTokenIssuer("right", time.Hour).Issue(Session{UserID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong", time.Hour).Parse(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestToken_Malformed(t *testing.T) {
	t.Parallel()
	_, err := NewTokenIssuer("k", time.Hour).Parse("not.a.jwt")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestPassword(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "hunter23")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_AndLogin(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, Credentials{Email: " Writer@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "writer@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, []byte("secret1"), u.PasswordHash)

	sess, tok, err := svc.Login(ctx, Credentials{Email: "writer@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)

	parsed, err := svc.Tokens().Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, sess, parsed)

	me, err := svc.Me(ctx, parsed)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"bad email", Credentials{Email: "nope", Password: "secret1"}},
		{"short password", Credentials{Email: "a@example.com", Password: "12345"}},
		{"password over bcrypt limit", Credentials{Email: "a@example.com", Password: strings.Repeat("é", 40)}},
		{"empty", Credentials{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.creds)
			require.Error(t, err)
			var verrs validation.Errors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Credentials{Email: "A@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Email: "a@example.com", Password: "wrong!!"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, Credentials{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestSessionFor(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()
	u, err := svc.Register(ctx, Credentials{Email: "bot@example.com", Password: "secret1"})
	require.NoError(t, err)

	sess, err := svc.SessionFor(ctx, "BOT@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)

	_, err = svc.SessionFor(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestContext(t *testing.T) {
	t.Parallel()
	assert.Nil(t, FromContext(context.Background()))
	s := &Session{UserID: "u"}
	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
}

func TestRegister_PasswordAtBcryptLimit(t *testing.T) {
	t.Parallel()
	svc := newTestService()
	ctx := context.Background()
	pw := strings.Repeat("p", MaxPasswordBytes)

	_, err := svc.Register(ctx, Credentials{Email: "long@example.com", Password: pw})
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, Credentials{Email: "long@example.com", Password: pw})
	assert.NoError(t, err)
}
