package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/starford/canvas/internal/apperr"
	"github.com/starford/canvas/internal/models"
)

// MinPasswordLen is the shortest accepted password, in characters.
const MinPasswordLen = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Credentials is the email/password pair used to register and sign in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email format and password length.
func (c *Credentials) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.Password, validation.Required, validation.Length(MinPasswordLen, 0), validation.By(maxBytes(MaxPasswordBytes))),
	)
}

func maxBytes(n int) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); len(s) > n {
			return validation.NewError("validation_length_too_long", fmt.Sprintf("the length must be no more than %d bytes", n))
		}
		return nil
	}
}

// Service registers accounts and signs users in.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewService creates an auth service.
func NewService(users UserStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens returns the issuer used to verify session tokens.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// Register creates an account. A taken email yields apperr.ErrAlreadyExists;
// invalid input yields a validation.Errors value.
func (s *Service) Register(ctx context.Context, c Credentials) (*models.User, error) {
	c.Email = normalizeEmail(c.Email)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(c.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        c.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns a session and its signed token.
// Unknown emails and wrong passwords both yield apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, c Credentials) (*Session, string, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(c.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	ok, err := CheckPassword(u.PasswordHash, c.Password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", apperr.ErrInvalidCredentials
	}
	sess := &Session{UserID: u.ID, Email: u.Email}
	token, err := s.tokens.Issue(*sess)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// SessionFor returns a session for an existing account, used by processes
// that act as a configured author without a token.
func (s *Service) SessionFor(ctx context.Context, email string) (*Session, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("author %q: %w", email, err)
	}
	return &Session{UserID: u.ID, Email: u.Email}, nil
}

// Me returns the account behind sess.
func (s *Service) Me(ctx context.Context, sess *Session) (*models.User, error) {
	if sess == nil {
		return nil, apperr.ErrNoSession
	}
	return s.users.UserByID(ctx, sess.UserID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
