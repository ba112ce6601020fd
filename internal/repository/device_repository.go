package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devinventory/internal/model"
)

// DeviceRepository defines device persistence operations.
type DeviceRepository interface {
	Create(ctx context.Context, device *model.Device) error
	UpdateFields(ctx context.Context, id uuid.UUID, device *model.Device) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error)
	FindAll(ctx context.Context) ([]model.Device, error)
	FindByHolder(ctx context.Context, userID string) ([]model.Device, error)
	FindBySerialNumber(ctx context.Context, serial string) (*model.Device, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateImage(ctx context.Context, id uuid.UUID, locator string) (bool, error)
	SetHolderIfVacant(ctx context.Context, id uuid.UUID, userID string) (bool, error)
}

type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

// Create inserts a new device.
func (r *deviceRepository) Create(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

// UpdateFields replaces the descriptive columns of a device. The holder
// column is never part of the statement: checkout state only ever changes
// through SetHolderIfVacant, so a concurrently committed take survives.
func (r *deviceRepository) UpdateFields(ctx context.Context, id uuid.UUID, device *model.Device) error {
	return r.db.WithContext(ctx).Model(&model.Device{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":          device.Name,
			"description":   device.Description,
			"serial_number": device.SerialNumber,
			"manufacturer":  device.Manufacturer,
			"image":         device.Image,
		}).Error
}

// FindByID finds a device by ID.
func (r *deviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Device, error) {
	var device model.Device
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// FindAll lists every device. Order is unspecified.
func (r *deviceRepository) FindAll(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := r.db.WithContext(ctx).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindByHolder lists devices currently held by the given user id.
func (r *deviceRepository) FindByHolder(ctx context.Context, userID string) ([]model.Device, error) {
	var devices []model.Device
	if err := r.db.WithContext(ctx).Where("taken_by = ?", userID).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindBySerialNumber finds a device by serial number (used by the seed CLI).
func (r *deviceRepository) FindBySerialNumber(ctx context.Context, serial string) (*model.Device, error) {
	var device model.Device
	if err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// Delete removes a device by ID. Returns false when no row matched, so a
// repeated delete surfaces as not-found rather than a silent success.
func (r *deviceRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Device{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateImage sets the image locator, overwriting any previous one.
func (r *deviceRepository) UpdateImage(ctx context.Context, id uuid.UUID, locator string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Device{}).
		Where("id = ?", id).
		Update("image", locator)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetHolderIfVacant assigns a holder with a single conditional UPDATE so the
// availability check and the write are atomic. Under concurrent takes on the
// same device at most one call matches a row; the losers see false.
func (r *deviceRepository) SetHolderIfVacant(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Device{}).
		Where("id = ? AND (taken_by IS NULL OR taken_by = '')", id).
		Update("taken_by", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
