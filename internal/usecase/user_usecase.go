// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"jobtrack/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new user.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the rotated token pair.
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// UserUsecase defines the interface for account and session operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	// RegisterUser creates a new account with an email/password credential.
	RegisterUser(ctx context.Context, input RegisterUserInput) (*RegisterOutput, error)

	// Login verifies credentials and opens a new session, returning a token pair.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// RefreshSession rotates a refresh token: the presented token is retired
	// and a brand-new pair is issued. A retired token can never be replayed.
	RefreshSession(ctx context.Context, refreshToken string) (*RefreshOutput, error)

	// Logout ends the single session identified by the refresh token.
	Logout(ctx context.Context, refreshToken string) error

	// LogoutAll ends every session of the user.
	LogoutAll(ctx context.Context, userID uuid.UUID) error

	// CleanupExpiredSessions removes expired session rows and returns how
	// many were deleted. Invoked by the scheduled worker.
	CleanupExpiredSessions(ctx context.Context) (int, error)
}
