package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"melodify/logger"
	"melodify/model"
	"melodify/repository"

	"github.com/google/uuid"
)

// SignOutScope selects which sessions SignOut revokes.
type SignOutScope string

const (
	// ScopeLocal revokes only the session behind the presented token.
	ScopeLocal SignOutScope = "local"
	// ScopeGlobal revokes every session of the token's user.
	ScopeGlobal SignOutScope = "global"
)

// SignUpParams is the input of SignUp.
type SignUpParams struct {
	Email    string
	Password string
	Username string
}

// Provider is the identity contract the HTTP layer depends on.
type Provider interface {
	SignUp(ctx context.Context, params SignUpParams) (*model.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) (*model.User, error)
	// GetUser resolves a bearer token. It returns ErrInvalidToken for tokens
	// that are malformed, expired or revoked.
	GetUser(ctx context.Context, token string) (*model.User, error)
	SignOut(ctx context.Context, token string, scope SignOutScope) error
}

// Options configures an IdentityService.
type Options struct {
	SigningKey               string
	AccessTokenTTL           time.Duration
	VerificationTTL          time.Duration
	RequireEmailConfirmation bool
	// VerifyURL is the absolute URL of the email confirmation endpoint.
	VerifyURL string
	Now       func() time.Time
}

// IdentityService implements Provider over a user table, a session store and a mailer.
type IdentityService struct {
	users    repository.UserRepository
	sessions SessionStore
	mailer   Mailer
	tokens   *TokenSigner
	opts     Options
	now      func() time.Time
}

// NewIdentityService wires the provider.
func NewIdentityService(users repository.UserRepository, sessions SessionStore, mailer Mailer, opts Options) *IdentityService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.AccessTokenTTL <= 0 {
		opts.AccessTokenTTL = time.Hour
	}
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = 24 * time.Hour
	}
	return &IdentityService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		tokens:   NewTokenSigner(opts.SigningKey, now),
		opts:     opts,
		now:      now,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *IdentityService) SignUp(ctx context.Context, params SignUpParams) (*model.User, error) {
	email, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(params.Username),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// A sign-up whose verification mail fails leaves no account behind.
	if err := s.sendVerification(ctx, user); err != nil {
		if delErr := s.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			logger.Error("Failed to roll back user after mail failure",
				logger.String("user_id", user.ID), logger.ErrorField(delErr))
			return nil, errors.Join(err, delErr)
		}
		return nil, err
	}
	logger.Info("User signed up", logger.String("user_id", user.ID))
	return user, nil
}

func (s *IdentityService) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if s.opts.RequireEmailConfirmation && !user.Confirmed() {
		return nil, nil, ErrEmailNotConfirmed
	}

	now := s.now()
	rec := model.SessionRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.AccessTokenTTL),
	}
	if err := s.sessions.Create(ctx, rec); err != nil {
		return nil, nil, err
	}
	token, err := s.tokens.IssueAccessToken(user.ID, user.Email, rec.ID, rec.ExpiresAt)
	if err != nil {
		return nil, nil, err
	}

	session := &model.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.opts.AccessTokenTTL / time.Second),
		ExpiresAt:   rec.ExpiresAt.Unix(),
	}
	return session, user, nil
}

// ResendVerification sends a new link to unconfirmed accounts. Unknown and
// already-confirmed addresses succeed silently.
func (s *IdentityService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.Confirmed() {
		return nil
	}
	return s.sendVerification(ctx, user)
}

func (s *IdentityService) VerifyEmail(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ParseVerificationToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Email != claims.Email {
		return nil, ErrInvalidToken
	}
	if user.Confirmed() {
		return user, nil
	}

	at := s.now().UTC()
	if err := s.users.MarkEmailConfirmed(ctx, user.ID, at); err != nil {
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}
	user.EmailConfirmedAt = &at
	return user, nil
}

func (s *IdentityService) GetUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	rec, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if rec.UserID != claims.Subject {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *IdentityService) SignOut(ctx context.Context, token string, scope SignOutScope) error {
	claims, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	switch scope {
	case ScopeGlobal:
		return s.sessions.DeleteAllForUser(ctx, claims.Subject)
	default:
		return s.sessions.Delete(ctx, claims.SessionID)
	}
}

func (s *IdentityService) sendVerification(ctx context.Context, user *model.User) error {
	token, err := s.tokens.IssueVerificationToken(user.ID, user.Email, s.opts.VerificationTTL)
	if err != nil {
		return err
	}
	link := s.opts.VerifyURL + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendVerification(ctx, user.Email, link); err != nil {
		return fmt.Errorf("error sending confirmation email: %w", err)
	}
	return nil
}
