package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device represents a tracked inventory item. TakenBy holds the id of the
// user currently in possession of the device; empty means available. It is a
// weak reference: no foreign key, and deleting a user leaves it untouched.
type Device struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null;index"`
	Description  string    `json:"description,omitempty" gorm:"size:1024"`
	SerialNumber string    `json:"serial_number,omitempty" gorm:"size:255;index"`
	Manufacturer string    `json:"manufacturer,omitempty" gorm:"size:255"`
	Image        string    `json:"image,omitempty" gorm:"size:512"`
	TakenBy      string    `json:"taken_by,omitempty" gorm:"size:255;index;default:''"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Available reports whether the device currently has no holder.
func (d *Device) Available() bool {
	return d.TakenBy == ""
}

// BeforeCreate sets UUID before creating the record.
func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
