package items

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRepository) GetItemByID(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) GetItemByCode(ctx context.Context, code string) (*Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) IsAvailable(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListAvailableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Item, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Item), args.Error(1)
}

func TestService_CreateItem(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name        string
		cmd         CreateItemCommand
		setupMock   func(*MockRepository)
		wantErr     error
		checkResult func(*testing.T, *Item)
	}{
		{
			name: "successfully creates item",
			cmd: CreateItemCommand{
				Code:        "VINYL-001",
				Name:        "Vinile autografato",
				Description: "Prima stampa, 1974",
				BasePrice:   5000,
				OwnerID:     ownerID,
			},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByCode", mock.Anything, "VINYL-001").Return(nil, nil)
				repo.On("CreateItem", mock.Anything, mock.AnythingOfType("*items.Item")).Return(nil)
			},
			wantErr: nil,
			checkResult: func(t *testing.T, item *Item) {
				assert.NotEqual(t, uuid.Nil, item.ID)
				assert.Equal(t, "VINYL-001", item.Code)
				assert.Equal(t, "Vinile autografato", item.Name)
				assert.Equal(t, int64(5000), item.BasePrice)
				assert.Equal(t, ownerID, item.OwnerID)
			},
		},
		{
			name: "fails with missing code",
			cmd: CreateItemCommand{
				Code:      "   ",
				Name:      "Vinile autografato",
				BasePrice: 5000,
				OwnerID:   ownerID,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrMissingFields,
		},
		{
			name: "fails with missing name",
			cmd: CreateItemCommand{
				Code:      "VINYL-001",
				Name:      "",
				BasePrice: 5000,
				OwnerID:   ownerID,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrMissingFields,
		},
		{
			name: "fails with zero base price",
			cmd: CreateItemCommand{
				Code:      "VINYL-001",
				Name:      "Vinile autografato",
				BasePrice: 0,
				OwnerID:   ownerID,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrInvalidBasePrice,
		},
		{
			name: "fails with negative base price",
			cmd: CreateItemCommand{
				Code:      "VINYL-001",
				Name:      "Vinile autografato",
				BasePrice: -100,
				OwnerID:   ownerID,
			},
			setupMock: func(repo *MockRepository) {
				// No repo calls expected
			},
			wantErr: ErrInvalidBasePrice,
		},
		{
			name: "fails when code is taken",
			cmd: CreateItemCommand{
				Code:      "VINYL-001",
				Name:      "Vinile autografato",
				BasePrice: 5000,
				OwnerID:   ownerID,
			},
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByCode", mock.Anything, "VINYL-001").Return(&Item{
					ID:   uuid.New(),
					Code: "VINYL-001",
				}, nil)
			},
			wantErr: ErrCodeTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(repo)
			item, err := service.CreateItem(context.Background(), tt.cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, item)
				if tt.checkResult != nil {
					tt.checkResult(t, item)
				}
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_GetItem(t *testing.T) {
	itemID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(*MockRepository)
		wantErr   error
	}{
		{
			name: "returns item",
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(&Item{
					ID:   itemID,
					Code: "VINYL-001",
				}, nil)
			},
			wantErr: nil,
		},
		{
			name: "fails when item does not exist",
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(nil, nil)
			},
			wantErr: ErrItemNotFound,
		},
		{
			name: "propagates repository errors",
			setupMock: func(repo *MockRepository) {
				repo.On("GetItemByID", mock.Anything, itemID).Return(nil, errors.New("connection lost"))
			},
			wantErr: errors.New("connection lost"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			service := NewService(repo)
			item, err := service.GetItem(context.Background(), itemID)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, item)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, item)
				assert.Equal(t, itemID, item.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_IsAvailable(t *testing.T) {
	itemID := uuid.New()

	t.Run("reports availability", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("IsAvailable", mock.Anything, itemID).Return(true, nil)

		service := NewService(repo)
		available, err := service.IsAvailable(context.Background(), itemID)

		assert.NoError(t, err)
		assert.True(t, available)
		repo.AssertExpectations(t)
	})

	t.Run("missing item is not available", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("IsAvailable", mock.Anything, itemID).Return(false, nil)

		service := NewService(repo)
		available, err := service.IsAvailable(context.Background(), itemID)

		assert.NoError(t, err)
		assert.False(t, available)
		repo.AssertExpectations(t)
	})
}
