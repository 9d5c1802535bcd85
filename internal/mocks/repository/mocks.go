// Package repository provides test doubles for the persistence interfaces.
package repository

import (
	"context"
	"testing"

	"jobtrack/internal/domain/entity"
	"jobtrack/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTransactionManager runs the callback against a fixed factory without a
// real transaction. Rollback semantics are the database's job, not the unit
// under test's, so executing the callback directly is enough.
type MockTransactionManager struct {
	Factory repository.RepositoryFactory
}

func (m *MockTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.Factory)
}

// MockRepositoryFactory hands out the configured mocks.
type MockRepositoryFactory struct {
	Users            *MockUserRepository
	Auths            *MockAuthRepository
	RefreshTokens    *MockRefreshTokenRepository
	BoardCredentials *MockBoardCredentialRepository
	Applications     *MockApplicationRepository
}

func (f *MockRepositoryFactory) UserRepo() repository.UserRepository { return f.Users }
func (f *MockRepositoryFactory) AuthRepo() repository.AuthRepository { return f.Auths }
func (f *MockRepositoryFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.RefreshTokens
}
func (f *MockRepositoryFactory) BoardCredentialRepo() repository.BoardCredentialRepository {
	return f.BoardCredentials
}
func (f *MockRepositoryFactory) ApplicationRepo() repository.ApplicationRepository {
	return f.Applications
}

// NewMockRepositoryFactory builds a factory with all repositories mocked and
// a transaction manager wired to it.
func NewMockRepositoryFactory(t *testing.T) (*MockTransactionManager, *MockRepositoryFactory) {
	factory := &MockRepositoryFactory{
		Users:            NewMockUserRepository(t),
		Auths:            NewMockAuthRepository(t),
		RefreshTokens:    NewMockRefreshTokenRepository(t),
		BoardCredentials: NewMockBoardCredentialRepository(t),
		Applications:     NewMockApplicationRepository(t),
	}

	return &MockTransactionManager{Factory: factory}, factory
}

// --- UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository(t *testing.T) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

// --- AuthRepository ---

type MockAuthRepository struct {
	mock.Mock
}

func NewMockAuthRepository(t *testing.T) *MockAuthRepository {
	m := &MockAuthRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthRepository) CreateAuthentication(ctx context.Context, auth *entity.Authentication) error {
	return m.Called(ctx, auth).Error(0)
}

func (m *MockAuthRepository) FindAuthentication(ctx context.Context, provider string, providerUserID string) (*entity.Authentication, error) {
	args := m.Called(ctx, provider, providerUserID)
	auth, _ := args.Get(0).(*entity.Authentication)

	return auth, args.Error(1)
}

// --- RefreshTokenRepository ---

type MockRefreshTokenRepository struct {
	mock.Mock
}

func NewMockRefreshTokenRepository(t *testing.T) *MockRefreshTokenRepository {
	m := &MockRefreshTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRefreshTokenRepository) CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*entity.RefreshToken)

	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) FindRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]*entity.RefreshToken)

	return tokens, args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteRefreshTokensByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	return args.Int(0), args.Error(1)
}

func (m *MockRefreshTokenRepository) CountActiveSessionsByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)

	return args.Int(0), args.Error(1)
}

// --- BoardCredentialRepository ---

type MockBoardCredentialRepository struct {
	mock.Mock
}

func NewMockBoardCredentialRepository(t *testing.T) *MockBoardCredentialRepository {
	m := &MockBoardCredentialRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockBoardCredentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.BoardCredential, error) {
	args := m.Called(ctx, userID)
	cred, _ := args.Get(0).(*entity.BoardCredential)

	return cred, args.Error(1)
}

func (m *MockBoardCredentialRepository) Upsert(ctx context.Context, cred *entity.BoardCredential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *MockBoardCredentialRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockBoardCredentialRepository) ListConnectedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)

	return ids, args.Error(1)
}

// --- ApplicationRepository ---

type MockApplicationRepository struct {
	mock.Mock
}

func NewMockApplicationRepository(t *testing.T) *MockApplicationRepository {
	m := &MockApplicationRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*entity.Application)

	return app, args.Error(1)
}

func (m *MockApplicationRepository) FindByBoardApplicationID(ctx context.Context, userID uuid.UUID, boardApplicationID string) (*entity.Application, error) {
	args := m.Called(ctx, userID, boardApplicationID)
	app, _ := args.Get(0).(*entity.Application)

	return app, args.Error(1)
}

func (m *MockApplicationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Application, error) {
	args := m.Called(ctx, userID)
	apps, _ := args.Get(0).([]*entity.Application)

	return apps, args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *entity.Application) error {
	return m.Called(ctx, app).Error(0)
}
