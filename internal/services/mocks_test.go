package services

import (
	"context"
	"time"

	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expire time.Time) error {
	args := m.Called(ctx, id, tokenHash, expire)
	return args.Error(0)
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context, ownerID uuid.UUID, filter repositories.TenantFilter, limit, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Count(ctx context.Context, ownerID uuid.UUID, filter repositories.TenantFilter) (int, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTenantRepository) ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Tenant, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindActiveByRoom(ctx context.Context, ownerID uuid.UUID, roomNumber string, excludeID uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, ownerID, roomNumber, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *models.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Bill, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillRepository) Update(ctx context.Context, bill *models.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) List(ctx context.Context, ownerID uuid.UUID, filter repositories.BillFilter, limit, offset int) ([]*models.Bill, error) {
	args := m.Called(ctx, ownerID, filter, limit, offset)
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *MockBillRepository) Count(ctx context.Context, ownerID uuid.UUID, filter repositories.BillFilter) (int, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockBillRepository) ListAll(ctx context.Context, ownerID uuid.UUID) ([]*models.Bill, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *MockBillRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordResetEmail(ctx context.Context, to, name, resetCode string) error {
	args := m.Called(ctx, to, name, resetCode)
	return args.Error(0)
}

func (m *MockMailer) SendWelcomeEmail(ctx context.Context, to, name string) error {
	args := m.Called(ctx, to, name)
	return args.Error(0)
}
