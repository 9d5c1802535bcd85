// Package service provides test doubles for the domain service interfaces.
package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobtrack/internal/domain/entity"
	"jobtrack/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// FakeClock is a settable clock for tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- PasswordHasher ---

type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *MockPasswordHasher) ValidatePasswordStrength(password string) error {
	return m.Called(password).Error(0)
}

// --- TokenService ---

type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTokenService) IssuePair(userID uuid.UUID) (string, string, error) {
	args := m.Called(userID)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenService) ValidateAccess(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) ValidateRefresh(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) HashToken(tokenString string) string {
	return m.Called(tokenString).String(0)
}

func (m *MockTokenService) RefreshTokenDuration() time.Duration {
	args := m.Called()
	d, _ := args.Get(0).(time.Duration)

	return d
}

// --- BoardClient ---

type MockBoardClient struct {
	mock.Mock
}

func NewMockBoardClient(t *testing.T) *MockBoardClient {
	m := &MockBoardClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockBoardClient) AuthorizationURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockBoardClient) ExchangeCode(ctx context.Context, code string) (*entity.BoardCredential, error) {
	args := m.Called(ctx, code)
	cred, _ := args.Get(0).(*entity.BoardCredential)

	return cred, args.Error(1)
}

func (m *MockBoardClient) Refresh(ctx context.Context, refreshToken string) (*entity.BoardCredential, error) {
	args := m.Called(ctx, refreshToken)
	cred, _ := args.Get(0).(*entity.BoardCredential)

	return cred, args.Error(1)
}

func (m *MockBoardClient) ListApplications(ctx context.Context, accessToken string) ([]service.BoardApplication, error) {
	args := m.Called(ctx, accessToken)
	records, _ := args.Get(0).([]service.BoardApplication)

	return records, args.Error(1)
}
