package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"devinventory/internal/errors"
	"devinventory/internal/model"
	"devinventory/internal/repository"
)

func TestCheckoutService_TakeDevice(t *testing.T) {
	deviceID := uuid.New()

	tests := []struct {
		name          string
		userID        string
		setupMock     func(*MockDeviceRepository)
		expectedError error
	}{
		{
			name:   "successful take",
			userID: "user-42",
			setupMock: func(m *MockDeviceRepository) {
				m.On("SetHolderIfVacant", mock.Anything, deviceID, "user-42").Return(true, nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing user id touches nothing",
			userID:        "  ",
			setupMock:     func(m *MockDeviceRepository) {},
			expectedError: errors.ErrUserIDRequired,
		},
		{
			name:   "unknown device",
			userID: "user-42",
			setupMock: func(m *MockDeviceRepository) {
				m.On("SetHolderIfVacant", mock.Anything, deviceID, "user-42").Return(false, nil)
				m.On("FindByID", mock.Anything, deviceID).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrDeviceNotFound,
		},
		{
			name:   "already taken is a conflict",
			userID: "user-99",
			setupMock: func(m *MockDeviceRepository) {
				m.On("SetHolderIfVacant", mock.Anything, deviceID, "user-99").Return(false, nil)
				m.On("FindByID", mock.Anything, deviceID).Return(&model.Device{
					ID:      deviceID,
					Name:    "Laptop-1",
					TakenBy: "user-42",
				}, nil)
			},
			expectedError: errors.ErrDeviceTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDeviceRepository)
			tt.setupMock(mockRepo)

			svc := NewCheckoutService(mockRepo, nil)
			err := svc.TakeDevice(context.Background(), deviceID, tt.userID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_DevicesHeldBy(t *testing.T) {
	mockRepo := new(MockDeviceRepository)
	held := []model.Device{
		{ID: uuid.New(), Name: "Laptop-1", TakenBy: "user-42"},
		{ID: uuid.New(), Name: "Monitor-3", TakenBy: "user-42"},
	}
	mockRepo.On("FindByHolder", mock.Anything, "user-42").Return(held, nil)
	mockRepo.On("FindByHolder", mock.Anything, "user-99").Return([]model.Device{}, nil)

	svc := NewCheckoutService(mockRepo, nil)

	devices, err := svc.DevicesHeldBy(context.Background(), "user-42")
	assert.NoError(t, err)
	assert.Len(t, devices, 2)

	devices, err = svc.DevicesHeldBy(context.Background(), "user-99")
	assert.NoError(t, err)
	assert.Empty(t, devices)

	mockRepo.AssertExpectations(t)
}

// vacancyRepo implements the conditional holder write over in-memory state,
// mirroring the at-most-one-winner guarantee of the SQL conditional UPDATE.
type vacancyRepo struct {
	repository.DeviceRepository

	mu     sync.Mutex
	id     uuid.UUID
	holder string
}

func (r *vacancyRepo) SetHolderIfVacant(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.id || r.holder != "" {
		return false, nil
	}
	r.holder = userID
	return true, nil
}

func (r *vacancyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.id {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Device{ID: r.id, Name: "Laptop-1", TakenBy: r.holder}, nil
}

func TestCheckoutService_ConcurrentTakes_SingleWinner(t *testing.T) {
	const callers = 8

	deviceID := uuid.New()
	repo := &vacancyRepo{id: deviceID}
	svc := NewCheckoutService(repo, nil)

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = svc.TakeDevice(context.Background(), deviceID, uuid.NewString())
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, errors.ErrDeviceTaken):
			conflicts++
		}
	}

	assert.Equal(t, 1, wins, "exactly one take must succeed")
	assert.Equal(t, callers-1, conflicts)
	assert.NotEmpty(t, repo.holder)
}
