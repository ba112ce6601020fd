package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devinventory/internal/cache"
	"devinventory/internal/errors"
	"devinventory/internal/metrics"
	"devinventory/internal/model"
	"devinventory/internal/repository"
)

// CheckoutService mediates holder transitions on devices. A device is either
// available or held by exactly one user; the only transition is Take.
type CheckoutService interface {
	TakeDevice(ctx context.Context, deviceID uuid.UUID, userID string) error
	DevicesHeldBy(ctx context.Context, userID string) ([]model.Device, error)
}

type checkoutService struct {
	repo  repository.DeviceRepository
	cache *cache.Client
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(repo repository.DeviceRepository, cache *cache.Client) CheckoutService {
	return &checkoutService{
		repo:  repo,
		cache: cache,
	}
}

// TakeDevice assigns the device to userID if it is currently available.
// The availability check and the holder write are one conditional update,
// so two concurrent takes on the same device produce exactly one winner.
// Every failure path leaves the device record untouched.
func (s *checkoutService) TakeDevice(ctx context.Context, deviceID uuid.UUID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		metrics.ObserveCheckout(metrics.OutcomeInvalid)
		return errors.ErrUserIDRequired
	}

	won, err := s.repo.SetHolderIfVacant(ctx, deviceID, userID)
	if err != nil {
		metrics.ObserveCheckout(metrics.OutcomeError)
		return fmt.Errorf("take device: %w", err)
	}
	if won {
		metrics.ObserveCheckout(metrics.OutcomeTaken)
		_ = s.cache.Delete(ctx, deviceCacheKey(deviceID))
		return nil
	}

	// No row matched: the device is either absent or already taken.
	if _, err := s.repo.FindByID(ctx, deviceID); err != nil {
		if err == gorm.ErrRecordNotFound {
			metrics.ObserveCheckout(metrics.OutcomeNotFound)
			return errors.ErrDeviceNotFound
		}
		metrics.ObserveCheckout(metrics.OutcomeError)
		return fmt.Errorf("take device: %w", err)
	}
	metrics.ObserveCheckout(metrics.OutcomeConflict)
	return errors.ErrDeviceTaken
}

// DevicesHeldBy returns the devices whose holder equals userID, as an
// unordered set. The user id is not checked against the identity store.
func (s *checkoutService) DevicesHeldBy(ctx context.Context, userID string) ([]model.Device, error) {
	return s.repo.FindByHolder(ctx, userID)
}
