package export

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/GudTech/spree-retailops/internal/domain/channel"
	"github.com/GudTech/spree-retailops/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of channel.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByRefnum(ctx context.Context, refnum string) (*channel.Order, error) {
	args := m.Called(ctx, refnum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.Order), args.Error(1)
}

func (m *MockOrderRepository) FindImportable(ctx context.Context, filter channel.ImportableFilter) ([]channel.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.Order), args.Error(1)
}

func (m *MockOrderRepository) FindImportStates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]channel.ImportState, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]channel.ImportState), args.Error(1)
}

func (m *MockOrderRepository) MarkExported(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *channel.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveReturnAuthorization(ctx context.Context, rma *channel.ReturnAuthorization) error {
	args := m.Called(ctx, rma)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteReturnAuthorization(ctx context.Context, rma *channel.ReturnAuthorization) error {
	args := m.Called(ctx, rma)
	return args.Error(0)
}

func (m *MockOrderRepository) InTransaction(ctx context.Context, fn func(channel.OrderRepository) error) error {
	m.Called(ctx)
	return fn(m)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the default limit", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		expected := channel.ImportableFilter{Limit: 50}
		repo.On("FindImportable", ctx, expected).Return([]channel.Order{}, nil)

		snaps, err := service.List(ctx, channel.ImportableFilter{})
		assert.NoError(t, err)
		assert.Empty(t, snaps)
		repo.AssertExpectations(t)
	})

	t.Run("applies the configured limit", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 25, zap.NewNop())

		expected := channel.ImportableFilter{Limit: 25}
		repo.On("FindImportable", ctx, expected).Return([]channel.Order{}, nil)

		_, err := service.List(ctx, channel.ImportableFilter{})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("caller limit wins over the configured one", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 25, zap.NewNop())

		expected := channel.ImportableFilter{Limit: 10}
		repo.On("FindImportable", ctx, expected).Return([]channel.Order{}, nil)

		_, err := service.List(ctx, channel.ImportableFilter{Limit: 10})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("returns snapshots of eligible orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		order := *exportableOrder(t)
		repo.On("FindImportable", ctx, mock.AnythingOfType("channel.ImportableFilter")).
			Return([]channel.Order{order}, nil)

		snaps, err := service.List(ctx, channel.ImportableFilter{Limit: 10})
		assert.NoError(t, err)
		assert.Len(t, snaps, 1)
		assert.Equal(t, "R100200300", snaps[0]["refnum"])
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		repo.On("FindImportable", ctx, mock.AnythingOfType("channel.ImportableFilter")).
			Return(nil, assert.AnError)

		_, err := service.List(ctx, channel.ImportableFilter{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestService_Acknowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an empty id list", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		err := service.Acknowledge(ctx, nil)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "InTransaction", mock.Anything)
	})

	t.Run("transitions matched orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		states := map[uuid.UUID]channel.ImportState{
			ids[0]: channel.ImportStateYes,
			ids[1]: channel.ImportStateDone, // already acknowledged is fine
		}

		repo.On("InTransaction", ctx).Return(nil)
		repo.On("FindImportStates", ctx, ids).Return(states, nil)
		repo.On("MarkExported", ctx, ids).Return(int64(1), nil)

		err := service.Acknowledge(ctx, ids)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("all-or-nothing on unmatched ids", func(t *testing.T) {
		repo := new(MockOrderRepository)
		service := NewService(repo, 0, zap.NewNop())

		known := uuid.New()
		unknown := uuid.New()
		nonimportable := uuid.New()
		ids := []uuid.UUID{known, unknown, nonimportable}
		states := map[uuid.UUID]channel.ImportState{
			known:         channel.ImportStateYes,
			nonimportable: channel.ImportStateNo,
		}

		repo.On("InTransaction", ctx).Return(nil)
		repo.On("FindImportStates", ctx, ids).Return(states, nil)

		err := service.Acknowledge(ctx, ids)
		assert.Error(t, err)

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNMATCHED_ORDERS", domainErr.Code)
		assert.Contains(t, domainErr.Message, unknown.String())
		assert.Contains(t, domainErr.Message, nonimportable.String())
		assert.NotContains(t, domainErr.Message, known.String())
		repo.AssertNotCalled(t, "MarkExported", mock.Anything, mock.Anything)
	})
}
