package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/repository"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

const emailTakenMessage = "The email has already been taken."

// AuthService coordinates registration, login and bearer-token sessions.
type AuthService struct {
	users      repository.UserRepository
	transactor repository.Transactor
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenManager
	sessions   auth.SessionStore
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Transactor repository.Transactor
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Sessions   auth.SessionStore
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		transactor: deps.Transactor,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		sessions:   deps.Sessions,
		logger:     logger,
	}
}

// RegisterInput carries an already validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates a user account and signs it in. The account insert and
// token issuance share one transaction; a session saved for a transaction
// that then fails to commit is revoked.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var result *AuthResult
	err = s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
		email := domain.NormalizeEmail(input.Email)
		if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
			return emailTaken()
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		user := &domain.User{
			Name:         strings.TrimSpace(input.Name),
			Email:        email,
			PasswordHash: hash,
			Role:         domain.RoleUser,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			if apperrors.IsUniqueViolation(err) {
				return emailTaken()
			}
			return err
		}

		issued, err := s.issue(ctx, user)
		if err != nil {
			return err
		}
		result = issued
		return nil
	})
	if err != nil {
		if result != nil {
			if revokeErr := s.sessions.Revoke(ctx, result.TokenID); revokeErr != nil {
				s.logger.Warn("orphaned session not revoked", zap.String("token_id", result.TokenID), zap.Error(revokeErr))
			}
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered", zap.String("user_id", result.User.ID))
	return result, nil
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ok, err := s.hasher.Matches(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}
	if !ok {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Authenticate resolves a bearer token into a principal. The token must be
// signed, unexpired, backed by a live session and owned by an existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Unauthenticated.")
	}

	alive, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !alive {
		return nil, apperrors.NewUnauthorized("Unauthenticated.")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("Unauthenticated.")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	principal := &auth.Principal{User: user, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Logout revokes only the token the principal presented.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil || principal.User == nil {
		return apperrors.NewNotFound("User", nil)
	}
	if err := s.sessions.Revoke(ctx, principal.TokenID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, token.ID, user.ID, s.tokens.TTL()); err != nil {
		return nil, err
	}
	return &AuthResult{Token: token.Value, TokenID: token.ID, ExpiresAt: token.ExpiresAt, User: user}, nil
}

func emailTaken() error {
	return apperrors.NewValidationError("Validation error", map[string][]string{
		"email": {emailTakenMessage},
	})
}
