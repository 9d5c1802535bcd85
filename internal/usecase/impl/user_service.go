// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"jobtrack/config"
	deliverycontext "jobtrack/internal/delivery/context"
	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/repository"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager         repository.TransactionManager
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	clock             service.Clock
	maxActiveSessions int
	logger            *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Clock        service.Clock
	Config       *config.Config
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	maxActiveSessions := 0
	if params.Config != nil && params.Config.Auth != nil {
		maxActiveSessions = params.Config.Auth.MaxActiveSessions
	}

	return &userService{
		txManager:         params.TxManager,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		clock:             params.Clock,
		maxActiveSessions: maxActiveSessions,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterUser orchestrates the complete user registration process.
func (srv *userService) RegisterUser(ctx context.Context, input usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "password does not meet security requirements")
	}

	// Hash before opening the transaction: bcrypt is deliberately slow and
	// must not hold a database transaction open.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	var registeredUser *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		authRepo := repoFactory.AuthRepo()

		_, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email is already registered")
		}
		if !errors.Is(err, repository.ErrAuthNotFound) {
			return errors.Wrap(err, "failed to find authentication")
		}

		newUser := &entity.User{
			Name:  input.Name,
			Email: input.Email,
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create user during registration")
		}

		newAuth := &entity.Authentication{
			UserID:         newUser.ID,
			Provider:       entity.ProviderTypeEmail,
			ProviderUserID: input.Email,
			PasswordHash:   hashedPassword,
		}
		if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
			return errors.Wrap(err, "failed to create authentication during registration")
		}

		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login verifies credentials, enforces the session limit and opens a new session.
func (srv *userService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Info("Starting login", slog.String("email", input.Email))

	var output *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		authRepo := repoFactory.AuthRepo()
		refreshRepo := repoFactory.RefreshTokenRepo()

		authRecord, err := authRepo.FindAuthentication(ctx, entity.ProviderTypeEmail, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrAuthNotFound) {
				// Same error as a wrong password: login must not reveal
				// whether the email is registered.
				return domainerrors.ErrInvalidCredentials.WrapMessage("unknown email")
			}

			return errors.Wrap(err, "failed to find authentication")
		}

		if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
			return domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
		}

		user, err := userRepo.FindByID(ctx, authRecord.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user for login")
		}

		if srv.maxActiveSessions > 0 {
			count, err := refreshRepo.CountActiveSessionsByUserID(ctx, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to count active sessions")
			}
			if count >= srv.maxActiveSessions {
				return domainerrors.ErrSessionLimitExceeded.WrapMessage("too many active sessions")
			}
		}

		accessToken, refreshToken, err := srv.openSession(ctx, refreshRepo, user.ID)
		if err != nil {
			return err
		}

		output = &usecase.LoginOutput{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         user,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Login completed", slog.Any("userID", output.User.ID))

	return output, nil
}

// RefreshSession rotates a refresh token inside a single transaction: the
// presented token's row is deleted and a new one inserted, so the old token
// can never be replayed even under concurrent use.
func (srv *userService) RefreshSession(ctx context.Context, refreshToken string) (*usecase.RefreshOutput, error) {
	claims, err := srv.tokenService.ValidateRefresh(refreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh token rejected", slog.Any("error", err))

		return nil, err
	}

	tokenHash := srv.tokenService.HashToken(refreshToken)

	var output *usecase.RefreshOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		stored, err := refreshRepo.FindRefreshTokenByHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
				// Valid signature but no session row: the session was revoked
				// or the token was already rotated.
				return domainerrors.ErrRefreshTokenInvalid.WrapMessage("session not found")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		if stored.UserID != claims.UserID {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("token subject mismatch")
		}

		if err := refreshRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
			return errors.Wrap(err, "failed to retire rotated refresh token")
		}

		accessToken, newRefreshToken, err := srv.openSession(ctx, refreshRepo, stored.UserID)
		if err != nil {
			return err
		}

		output = &usecase.RefreshOutput{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to rotate session", slog.Any("userID", claims.UserID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Session rotated", slog.Any("userID", claims.UserID))

	return output, nil
}

// openSession mints a token pair and persists the refresh token's hash as a
// new session row.
func (srv *userService) openSession(ctx context.Context, refreshRepo repository.RefreshTokenRepository, userID uuid.UUID) (string, string, error) {
	accessToken, refreshToken, err := srv.tokenService.IssuePair(userID)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to issue token pair")
	}

	session := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: srv.clock.Now().Add(srv.tokenService.RefreshTokenDuration()),
	}
	if err := refreshRepo.CreateRefreshToken(ctx, session); err != nil {
		return "", "", errors.Wrap(err, "failed to persist session")
	}

	return accessToken, refreshToken, nil
}

// Logout ends the session identified by the refresh token. Logging out an
// already-dead session succeeds: the end state is the same.
func (srv *userService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := srv.tokenService.ValidateRefresh(refreshToken)
	if err != nil {
		return err
	}

	tokenHash := srv.tokenService.HashToken(refreshToken)

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to delete session")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to logout", slog.Any("userID", claims.UserID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Session ended", slog.Any("userID", claims.UserID))

	return nil
}

// LogoutAll ends every session of the user.
func (srv *userService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.RefreshTokenRepo().DeleteRefreshTokensByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to logout all sessions", slog.Any("userID", userID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("All sessions ended", slog.Any("userID", userID))

	return nil
}

// CleanupExpiredSessions removes expired session rows.
func (srv *userService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	var deleted int
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		n, err := repoFactory.RefreshTokenRepo().DeleteExpiredRefreshTokens(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to delete expired sessions")
		}
		deleted = n

		return nil
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		srv.log(ctx).Info("Expired sessions removed", slog.Int("count", deleted))
	}

	return deleted, nil
}
