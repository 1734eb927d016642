package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByFirebaseID(ctx context.Context, firebaseID string) (*entities.User, error) {
	args := m.Called(ctx, firebaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, in entities.UpdateProfileInput) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProgress(ctx context.Context, user *entities.User, expectedXP int64) error {
	args := m.Called(ctx, user, expectedXP)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entities.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) ListPushTokens(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUserRepository) ResetLapsedStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) Create(ctx context.Context, deposit *entities.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Deposit, int64, error) {
	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Deposit), args.Get(1).(int64), args.Error(2)
}

func (m *MockDepositRepository) SumByUser(ctx context.Context) ([]entities.UserTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.UserTotal), args.Error(1)
}

// Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateBroadcast(ctx context.Context, broadcast *entities.BroadcastNotification) error {
	args := m.Called(ctx, broadcast)
	return args.Error(0)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Notification, int64, error) {
	args := m.Called(ctx, userID, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// Mock PriceOracle
type MockPriceOracle struct {
	mock.Mock
}

func (m *MockPriceOracle) GetPrices(ctx context.Context, symbols []string, currencies []string) (map[string]entities.AssetQuote, error) {
	args := m.Called(ctx, symbols, currencies)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]entities.AssetQuote), args.Error(1)
}

// Mock PushGateway
type MockPushGateway struct {
	mock.Mock
}

func (m *MockPushGateway) Send(ctx context.Context, messages []entities.PushMessage) (entities.PushReport, error) {
	args := m.Called(ctx, messages)
	return args.Get(0).(entities.PushReport), args.Error(1)
}

// Mock LeaderboardInvalidator
type MockLeaderboardInvalidator struct {
	mock.Mock
}

func (m *MockLeaderboardInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

// Mock metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordDeposit(symbol string, amountUSD decimal.Decimal) {
	m.Called(symbol, amountUSD)
}

func (m *MockMetrics) RecordPush(sent, failed int) {
	m.Called(sent, failed)
}

// quote builds an AssetQuote from string prices keyed by currency
func quote(symbol string, prices map[string]string) entities.AssetQuote {
	q := entities.AssetQuote{Symbol: symbol, Prices: map[string]decimal.Decimal{}}
	for cur, p := range prices {
		q.Prices[cur] = decimal.RequireFromString(p)
	}
	return q
}
