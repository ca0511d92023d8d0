package models

import (
	"time"

	"gorm.io/gorm"
)

// Transport is one leg moving collected material. A collector may have many.
type Transport struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CollectorID   string    `gorm:"type:varchar(36);index;not null" json:"collectorId"`
	TransporterID string    `gorm:"type:varchar(36);index;not null" json:"transporterId"`
	QuantityKg    float64   `gorm:"not null" json:"quantityKg"`
	Location      Location  `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Destination   string    `gorm:"size:255;not null" json:"destination"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
}

func (t *Transport) BeforeCreate(_ *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}
