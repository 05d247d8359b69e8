package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexaguru/nexaguru/internal/models"
	"github.com/nexaguru/nexaguru/internal/session"
)

// AuthService handles signup, login and logout. Passwords are stored in
// plaintext, matching the simulation-only identity model of this product.
type AuthService struct {
	accounts AccountStore
	sessions *session.Manager
}

func NewAuthService(accounts AccountStore, sessions *session.Manager) *AuthService {
	return &AuthService{accounts: accounts, sessions: sessions}
}

// NormalizeEmail lowercases and trims an account identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account with the initial credit grant and opens a
// session for it.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.Account, *session.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrEmptyCredentials
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrAccountExists
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Email:    email,
		Password: password,
		Credits:  models.InitialCredits,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	return account, s.sessions.Issue(account.Email), nil
}

// Login verifies the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, *session.Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrEmptyCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}
	if account == nil || account.Password != password {
		return nil, nil, ErrInvalidCredentials
	}

	return account, s.sessions.Issue(account.Email), nil
}

// Logout revokes the session token.
func (s *AuthService) Logout(token string) {
	s.sessions.Revoke(token)
}

// LogoutAll revokes every session the account holds.
func (s *AuthService) LogoutAll(email string) {
	s.sessions.RevokeAll(email)
}

// Current resolves a bearer token to its account.
func (s *AuthService) Current(ctx context.Context, token string) (*models.Account, error) {
	sess, ok := s.sessions.Resolve(token)
	if !ok {
		return nil, nil
	}
	account, err := s.accounts.FindByEmail(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}
