package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse/apiserver/internal/events"
	"github.com/gatehouse/apiserver/internal/store"
	"github.com/gatehouse/apiserver/internal/token"
	"github.com/gatehouse/apiserver/types"
)

const defaultUserRole = "User"

// Hasher abstracts the one-way credential transform.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthService orchestrates the credential lifecycle: it turns credentials
// into accounts and session tokens, and tokens back into accounts.
type AuthService struct {
	repo   UserRepository
	hasher Hasher
	codec  *token.Codec
	events *events.Publisher
	logger *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(repo UserRepository, hasher Hasher, codec *token.Codec, publisher *events.Publisher, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
		events: publisher,
		logger: logger,
	}
}

// Register creates a new account and issues its first session token.
// Registration is atomic: either the account row commits or nothing persists.
func (s *AuthService) Register(ctx context.Context, fullName string, dateOfBirth time.Time, email, password string) (types.User, string, error) {
	fullName = strings.TrimSpace(fullName)
	email = store.NormalizeEmail(email)
	if fullName == "" || email == "" || password == "" || dateOfBirth.IsZero() {
		return types.User{}, "", ErrMissingField
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		DateOfBirth:  dateOfBirth,
		Role:         defaultUserRole,
		PasswordHash: hash,
	})
	if err != nil {
		// Duplicate detection rides on the store's uniqueness constraint, so
		// a racing registration for the same address loses cleanly here.
		return types.User{}, "", err
	}

	tok, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return types.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.events.UserRegistered(user.ID, user.Email)
	return user, tok, nil
}

// Authenticate verifies email/password credentials and issues a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (types.User, string, error) {
	email = store.NormalizeEmail(email)
	if email == "" || password == "" {
		return types.User{}, "", ErrMissingField
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, "", ErrInvalidCredentials
		}
		return types.User{}, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return types.User{}, "", ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login", slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.LastLogin = &now
	}

	tok, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		return types.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.events.UserSignedIn(user.ID, user.Email)
	return user, tok, nil
}

// ResolveSession validates a session token and re-reads the account it was
// issued for. Claims are trusted only for identity and expiry; the returned
// view always reflects current store state.
func (s *AuthService) ResolveSession(ctx context.Context, raw string) (types.User, error) {
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.repo.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUserNotFound)
		}
		return types.User{}, err
	}
	return user, nil
}
