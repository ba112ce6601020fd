package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devinventory/internal/cache"
	"devinventory/internal/errors"
	"devinventory/internal/model"
	"devinventory/internal/repository"
	"devinventory/internal/storage"
)

const deviceCacheTTL = 5 * time.Minute

func deviceCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("device:%s", id.String())
}

// DeviceUpdate carries the replaceable descriptive fields of a device.
// The holder field is deliberately absent: checkout state is only ever
// mutated through the checkout service.
type DeviceUpdate struct {
	Name         string
	Description  string
	SerialNumber string
	Manufacturer string
	Image        string
}

// DeviceService handles device registry operations.
type DeviceService interface {
	CreateDevice(ctx context.Context, device *model.Device) (*model.Device, error)
	GetDevice(ctx context.Context, id uuid.UUID) (*model.Device, error)
	ListDevices(ctx context.Context) ([]model.Device, error)
	UpdateDevice(ctx context.Context, id uuid.UUID, upd DeviceUpdate) (*model.Device, error)
	DeleteDevice(ctx context.Context, id uuid.UUID) error
	AttachImage(ctx context.Context, id uuid.UUID, filename string, data []byte) error
	FetchImage(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type deviceService struct {
	repo   repository.DeviceRepository
	images storage.ImageStore
	cache  *cache.Client
}

// NewDeviceService creates a new device service.
func NewDeviceService(repo repository.DeviceRepository, images storage.ImageStore, cache *cache.Client) DeviceService {
	return &deviceService{
		repo:   repo,
		images: images,
		cache:  cache,
	}
}

// CreateDevice registers a new device. The device starts available.
func (s *deviceService) CreateDevice(ctx context.Context, device *model.Device) (*model.Device, error) {
	if device.Name == "" {
		return nil, errors.ErrDeviceNameRequired
	}
	device.TakenBy = ""
	if err := s.repo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	return device, nil
}

// GetDevice retrieves a device by ID with caching.
func (s *deviceService) GetDevice(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	if data, _ := s.cache.Get(ctx, deviceCacheKey(id)); data != nil {
		var cached model.Device
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDeviceNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(device); err == nil {
		_ = s.cache.Set(ctx, deviceCacheKey(id), payload, deviceCacheTTL)
	}

	return device, nil
}

// ListDevices returns every registered device. Always read from the
// database: list projections must reflect the latest committed state.
func (s *deviceService) ListDevices(ctx context.Context) ([]model.Device, error) {
	return s.repo.FindAll(ctx)
}

// UpdateDevice replaces the descriptive fields of a device. The holder
// field is preserved as-is.
func (s *deviceService) UpdateDevice(ctx context.Context, id uuid.UUID, upd DeviceUpdate) (*model.Device, error) {
	if upd.Name == "" {
		return nil, errors.ErrDeviceNameRequired
	}

	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDeviceNotFound
		}
		return nil, err
	}

	device.Name = upd.Name
	device.Description = upd.Description
	device.SerialNumber = upd.SerialNumber
	device.Manufacturer = upd.Manufacturer
	device.Image = upd.Image

	// Column-scoped write: taken_by stays out of the statement so a take
	// committed after the read above is never reverted.
	if err := s.repo.UpdateFields(ctx, id, device); err != nil {
		return nil, fmt.Errorf("update device: %w", err)
	}

	_ = s.cache.Delete(ctx, deviceCacheKey(id))
	return device, nil
}

// DeleteDevice removes a device. A second delete of the same id reports
// not-found, never a duplicate success.
func (s *deviceService) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if !deleted {
		return errors.ErrDeviceNotFound
	}
	_ = s.cache.Delete(ctx, deviceCacheKey(id))
	return nil
}

// AttachImage stores the uploaded bytes and records the locator on the
// device, overwriting any previous image locator.
func (s *deviceService) AttachImage(ctx context.Context, id uuid.UUID, filename string, data []byte) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrDeviceNotFound
		}
		return err
	}

	locator, err := s.images.Save(filepath.Ext(filename), data)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrImageStore, err)
	}

	updated, err := s.repo.UpdateImage(ctx, id, locator)
	if err != nil {
		return fmt.Errorf("attach image: %w", err)
	}
	if !updated {
		// device vanished between the existence check and the write
		return errors.ErrDeviceNotFound
	}

	_ = s.cache.Delete(ctx, deviceCacheKey(id))
	return nil
}

// FetchImage returns the raw image bytes for a device.
func (s *deviceService) FetchImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	device, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrDeviceNotFound
		}
		return nil, err
	}

	if device.Image == "" {
		return nil, errors.ErrImageNotFound
	}

	data, err := s.images.Read(device.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrImageStore, err)
	}
	return data, nil
}
