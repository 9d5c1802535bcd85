// Package usecase provides test doubles for the use case interfaces.
package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialUsecase stands in for the refresh coordinator.
type MockCredentialUsecase struct {
	mock.Mock
}

func NewMockCredentialUsecase(t *testing.T) *MockCredentialUsecase {
	m := &MockCredentialUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockCredentialUsecase) GetValidAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)

	return args.String(0), args.Error(1)
}
