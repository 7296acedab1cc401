package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/config"
	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// AuthService coordinates login, logout, and token authentication.
type AuthService struct {
	store      repository.Store
	sessions   auth.SessionStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
	Staff     *domain.StaffMember
}

// NewAuthService builds the service. A nil session store makes tokens stateless.
func NewAuthService(cfg config.Config, deps Dependencies, sessions auth.SessionStore) *AuthService {
	if sessions == nil {
		sessions = auth.NewStatelessSessionStore()
	}
	return &AuthService{
		store:      deps.Store,
		sessions:   sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     deps.logger(),
	}
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewUnauthorized("invalid username or password")
	}
	repos := s.store.Repos()

	account, err := repos.Accounts.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		_ = auth.CheckPassword(nil, password)
		return nil, apperrors.NewUnauthorized("invalid username or password")
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.CheckPassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid username or password")
	}

	token, claims, err := s.tokenMgr.GenerateToken(account.ID, account.Username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.sessions.Create(ctx, claims.ID, account.ID, s.tokenMgr.TTL()); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := repos.Accounts.TouchLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("account_id", account.ID), zap.Error(err))
	}

	staff, err := repos.Staff.GetByAccountID(ctx, account.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Account:   account,
		Staff:     staff,
	}, nil
}

// Logout revokes the principal's session.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.SessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, principal.SessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Authenticate resolves a bearer token to the logged in account and, when
// one is linked, its staff member.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	active, err := s.sessions.Active(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !active {
		return nil, apperrors.NewUnauthorized("session expired")
	}
	accountID, err := claims.AccountID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	repos := s.store.Repos()
	account, err := repos.Accounts.GetByID(ctx, accountID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewUnauthorized("account no longer exists")
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}
	staff, err := repos.Staff.GetByAccountID(ctx, accountID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}
	return &auth.Principal{Account: account, Staff: staff, SessionID: claims.ID}, nil
}

// EnsureBootstrapAdmin creates an administrator account that is not linked
// to any staff member. Existing accounts are never modified.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	repos := s.store.Repos()
	exists, err := repos.Accounts.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	account := &domain.Account{
		Username:     username,
		PasswordHash: &hash,
		DisplayName:  username,
		IsAdmin:      true,
	}
	if err := repos.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap admin account created", zap.Int64("account_id", account.ID), zap.String("username", username))
	return nil
}
