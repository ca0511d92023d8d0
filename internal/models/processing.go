package models

import (
	"time"

	"gorm.io/gorm"
)

// Processing records what a plant received and produced for one collector lot.
// ProcessedQuantityKg is not checked against ReceivedQuantityKg here.
type Processing struct {
	ID                  string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CollectorID         string         `gorm:"type:varchar(36);index;not null" json:"collectorId"`
	ProcessorID         string         `gorm:"type:varchar(36);index;not null" json:"processorId"`
	ReceivedQuantityKg  float64        `gorm:"not null" json:"receivedQuantityKg"`
	ProcessedQuantityKg float64        `gorm:"not null" json:"processedQuantityKg"`
	ProcessingType      ProcessingType `gorm:"size:20;not null" json:"processingType"`
	Location            Location       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Timestamp           time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (p *Processing) BeforeCreate(_ *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}
