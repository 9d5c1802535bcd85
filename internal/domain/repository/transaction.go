package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to group writes atomically without depending
// on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction. If the function
	// returns an error the transaction is rolled back, otherwise committed.
	// All repository operations obtained from the factory share the same
	// database transaction.
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repository instances bound to one transaction.
type RepositoryFactory interface {
	// UserRepo returns a UserRepository bound to the current transaction.
	UserRepo() UserRepository

	// AuthRepo returns an AuthRepository bound to the current transaction.
	AuthRepo() AuthRepository

	// RefreshTokenRepo returns a RefreshTokenRepository bound to the current transaction.
	RefreshTokenRepo() RefreshTokenRepository

	// BoardCredentialRepo returns a BoardCredentialRepository bound to the current transaction.
	BoardCredentialRepo() BoardCredentialRepository

	// ApplicationRepo returns an ApplicationRepository bound to the current transaction.
	ApplicationRepo() ApplicationRepository
}
