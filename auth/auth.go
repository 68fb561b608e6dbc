/*
Package auth provides identity and session handling for the pay engine.

PURPOSE:
  Multi-user deployments need login. This package owns the credential
  store contract, bcrypt password hashing, and HS256 JWT sessions. The
  pay engine itself never sees credentials - it only receives an owner
  identifier, which this package resolves from a bearer token.

DESIGN NOTES:
  - Credentials live in a dedicated users table, not in the settings
    key/value store. The IdentityStore interface is consumed here and
    implemented by store/sqlite.
  - Wrong credentials yield ErrInvalidCredentials, nothing more specific;
    there is no lockout or backoff policy.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCredentials is returned for an unknown user or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned by identity stores for a missing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken wraps parsing/validation errors.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// =============================================================================
// IDENTITY STORE
// =============================================================================

// User is an account. ID doubles as the owner key on activity records.
type User struct {
	ID           string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// IdentityStore is the credential store contract. Implemented by
// store/sqlite; consumed, never implemented, by the pay core.
type IdentityStore interface {
	LookupByName(ctx context.Context, name string) (User, error)
	LookupByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, u User) error
	Rename(ctx context.Context, id, newName string) error
}

// =============================================================================
// SERVICE
// =============================================================================

// Config holds token signing parameters.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// Service implements register / login / rename over an IdentityStore.
type Service struct {
	Store  IdentityStore
	Config Config
}

func NewService(store IdentityStore, cfg Config) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{Store: store, Config: cfg}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, password string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	if _, err := s.Store.LookupByName(ctx, name); err == nil {
		return User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	u, err := s.Store.LookupByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(u)
}

// Rename changes an account's display name.
func (s *Service) Rename(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("new name must not be empty")
	}
	if existing, err := s.Store.LookupByName(ctx, newName); err == nil && existing.ID != id {
		return ErrUserExists
	}
	return s.Store.Rename(ctx, id, newName)
}

// =============================================================================
// TOKENS
// =============================================================================

// Claims is the payload extracted from a session token.
type Claims struct {
	UserID    string
	Name      string
	ExpiresAt time.Time
}

func (s *Service) issue(u User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID,
		"name": u.Name,
		"jti":  uuid.NewString(),
		"iss":  s.Config.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.Config.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(s.Config.Secret))
}

// Parse validates a token string and returns normalized claims.
func (s *Service) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Config.Secret), nil
	}, jwt.WithIssuer(s.Config.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Claims{UserID: sub, Name: name, ExpiresAt: exp.Time}, nil
}
