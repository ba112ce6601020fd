package service

import (
	"context"
	"fmt"
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

// MockDeviceRepository is a mock implementation of DeviceRepository.
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Create(ctx context.Context, device *model.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) UpdateFields(ctx context.Context, id uuid.UUID, device *model.Device) error {
	args := m.Called(ctx, id, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindAll(ctx context.Context) ([]model.Device, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindByHolder(ctx context.Context, userID string) ([]model.Device, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Device), args.Error(1)
}

func (m *MockDeviceRepository) FindBySerialNumber(ctx context.Context, serial string) (*model.Device, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Device), args.Error(1)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceRepository) UpdateImage(ctx context.Context, id uuid.UUID, locator string) (bool, error) {
	args := m.Called(ctx, id, locator)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeviceRepository) SetHolderIfVacant(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

// fakeImageStore is an in-memory ImageStore for service tests.
type fakeImageStore struct {
	files   map[string][]byte
	saveErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{files: map[string][]byte{}}
}

func (s *fakeImageStore) Save(ext string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	locator := fmt.Sprintf("img-%d%s", len(s.files), ext)
	s.files[locator] = data
	return locator, nil
}

func (s *fakeImageStore) Read(locator string) ([]byte, error) {
	data, ok := s.files[locator]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", locator)
	}
	return data, nil
}

func TestDeviceService_CreateDevice(t *testing.T) {
	tests := []struct {
		name          string
		device        *model.Device
		setupMock     func(*MockDeviceRepository)
		expectedError error
	}{
		{
			name:   "successful creation starts available",
			device: &model.Device{Name: "Laptop-1", TakenBy: "someone"},
			setupMock: func(m *MockDeviceRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Device")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing name",
			device:        &model.Device{Description: "no name"},
			setupMock:     func(m *MockDeviceRepository) {},
			expectedError: errors.ErrDeviceNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDeviceRepository)
			tt.setupMock(mockRepo)

			svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
			created, err := svc.CreateDevice(context.Background(), tt.device)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, created)
				assert.True(t, created.Available(), "a new device must start without a holder")
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestDeviceService_GetDevice_NotFound(t *testing.T) {
	mockRepo := new(MockDeviceRepository)
	id := uuid.New()
	mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
	device, err := svc.GetDevice(context.Background(), id)

	assert.ErrorIs(t, err, errors.ErrDeviceNotFound)
	assert.Nil(t, device)
	mockRepo.AssertExpectations(t)
}

func TestDeviceService_UpdateDevice(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		update        DeviceUpdate
		setupMock     func(*MockDeviceRepository)
		expectedError error
	}{
		{
			name:   "holder field survives a full update",
			update: DeviceUpdate{Name: "Laptop-2", Description: "renamed"},
			setupMock: func(m *MockDeviceRepository) {
				m.On("FindByID", mock.Anything, id).Return(&model.Device{
					ID:      id,
					Name:    "Laptop-1",
					TakenBy: "user-42",
				}, nil)
				m.On("UpdateFields", mock.Anything, id, mock.MatchedBy(func(d *model.Device) bool {
					return d.Name == "Laptop-2"
				})).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "missing name",
			update:        DeviceUpdate{Description: "no name"},
			setupMock:     func(m *MockDeviceRepository) {},
			expectedError: errors.ErrDeviceNameRequired,
		},
		{
			name:   "unknown device",
			update: DeviceUpdate{Name: "Laptop-2"},
			setupMock: func(m *MockDeviceRepository) {
				m.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrDeviceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDeviceRepository)
			tt.setupMock(mockRepo)

			svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
			updated, err := svc.UpdateDevice(context.Background(), id, tt.update)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, updated)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.update.Name, updated.Name)
				assert.Equal(t, "user-42", updated.TakenBy)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// raceDeviceRepo holds one device in memory and mirrors the column scope of
// the real repository: UpdateFields copies only the descriptive fields while
// SetHolderIfVacant is the single writer of the holder. onRead fires once
// after a FindByID, letting a test commit a take mid-update.
type raceDeviceRepo struct {
	repository.DeviceRepository

	mu     sync.Mutex
	device model.Device
	onRead func()
}

func (r *raceDeviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	r.mu.Lock()
	if id != r.device.ID {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := r.device
	r.mu.Unlock()

	if r.onRead != nil {
		hook := r.onRead
		r.onRead = nil
		hook()
	}
	return &snapshot, nil
}

func (r *raceDeviceRepo) UpdateFields(ctx context.Context, id uuid.UUID, device *model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.device.Name = device.Name
	r.device.Description = device.Description
	r.device.SerialNumber = device.SerialNumber
	r.device.Manufacturer = device.Manufacturer
	r.device.Image = device.Image
	return nil
}

func (r *raceDeviceRepo) SetHolderIfVacant(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.device.ID || r.device.TakenBy != "" {
		return false, nil
	}
	r.device.TakenBy = userID
	return true, nil
}

func (r *raceDeviceRepo) FindByHolder(ctx context.Context, userID string) ([]model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.device.TakenBy == userID {
		return []model.Device{r.device}, nil
	}
	return []model.Device{}, nil
}

func TestDeviceService_UpdateDevice_DoesNotRevertConcurrentTake(t *testing.T) {
	id := uuid.New()
	repo := &raceDeviceRepo{device: model.Device{ID: id, Name: "Laptop-1"}}

	deviceSvc := NewDeviceService(repo, newFakeImageStore(), nil)
	checkoutSvc := NewCheckoutService(repo, nil)

	// a checkout lands between the update's read and its write
	repo.onRead = func() {
		assert.NoError(t, checkoutSvc.TakeDevice(context.Background(), id, "user-42"))
	}

	_, err := deviceSvc.UpdateDevice(context.Background(), id, DeviceUpdate{Name: "Laptop-2"})
	assert.NoError(t, err)

	assert.Equal(t, "user-42", repo.device.TakenBy, "field update must not clear a committed holder")
	assert.Equal(t, "Laptop-2", repo.device.Name)

	held, err := checkoutSvc.DevicesHeldBy(context.Background(), "user-42")
	assert.NoError(t, err)
	assert.Len(t, held, 1)

	// the device stays taken: a second user cannot win it
	assert.ErrorIs(t, checkoutSvc.TakeDevice(context.Background(), id, "user-99"), errors.ErrDeviceTaken)
}

func TestDeviceService_DeleteDevice_Idempotence(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockDeviceRepository)
	mockRepo.On("Delete", mock.Anything, id).Return(true, nil).Once()
	mockRepo.On("Delete", mock.Anything, id).Return(false, nil)

	svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)

	assert.NoError(t, svc.DeleteDevice(context.Background(), id))
	// repeat delete is not-found, never a duplicate success
	assert.ErrorIs(t, svc.DeleteDevice(context.Background(), id), errors.ErrDeviceNotFound)
	mockRepo.AssertExpectations(t)
}

func TestDeviceService_AttachImage(t *testing.T) {
	id := uuid.New()

	t.Run("stores bytes and records the locator", func(t *testing.T) {
		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Device{ID: id, Name: "Laptop-1"}, nil)
		mockRepo.On("UpdateImage", mock.Anything, id, mock.AnythingOfType("string")).Return(true, nil)

		store := newFakeImageStore()
		svc := NewDeviceService(mockRepo, store, nil)

		err := svc.AttachImage(context.Background(), id, "photo.jpg", []byte("jpeg-bytes"))
		assert.NoError(t, err)
		assert.Len(t, store.files, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown device", func(t *testing.T) {
		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
		err := svc.AttachImage(context.Background(), id, "photo.jpg", []byte("jpeg-bytes"))
		assert.ErrorIs(t, err, errors.ErrDeviceNotFound)
	})

	t.Run("storage failure is an io error", func(t *testing.T) {
		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Device{ID: id, Name: "Laptop-1"}, nil)

		store := newFakeImageStore()
		store.saveErr = fmt.Errorf("disk full")
		svc := NewDeviceService(mockRepo, store, nil)

		err := svc.AttachImage(context.Background(), id, "photo.jpg", []byte("jpeg-bytes"))
		assert.ErrorIs(t, err, errors.ErrImageStore)
	})
}

func TestDeviceService_FetchImage(t *testing.T) {
	id := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		store := newFakeImageStore()
		locator, err := store.Save(".jpg", []byte("jpeg-bytes"))
		assert.NoError(t, err)

		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Device{ID: id, Name: "Laptop-1", Image: locator}, nil)

		svc := NewDeviceService(mockRepo, store, nil)
		data, err := svc.FetchImage(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("no image attached", func(t *testing.T) {
		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Device{ID: id, Name: "Laptop-1"}, nil)

		svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
		_, err := svc.FetchImage(context.Background(), id)
		assert.ErrorIs(t, err, errors.ErrImageNotFound)
	})

	t.Run("dangling locator is an io error", func(t *testing.T) {
		mockRepo := new(MockDeviceRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(&model.Device{ID: id, Name: "Laptop-1", Image: "gone.jpg"}, nil)

		svc := NewDeviceService(mockRepo, newFakeImageStore(), nil)
		_, err := svc.FetchImage(context.Background(), id)
		assert.ErrorIs(t, err, errors.ErrImageStore)
	})
}
