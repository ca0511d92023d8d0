package models

import (
	"time"

	"gorm.io/gorm"
)

// Sensors holds optional field readings taken at harvest. Values are free-form.
type Sensors struct {
	Temperature  *string `gorm:"size:32" json:"temperature"`
	Humidity     *string `gorm:"size:32" json:"humidity"`
	SoilMoisture *string `gorm:"size:32" json:"soilMoisture"`
	PH           *string `gorm:"column:ph;size:32" json:"pH"`
}

// Collector is the root of a chain: one harvested lot. Never updated after creation.
type Collector struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string      `gorm:"type:varchar(36);index;not null" json:"userId"`
	Species     string      `gorm:"size:120;not null;index:idx_collectors_species_time,priority:1" json:"species"`
	Quantity    float64     `gorm:"not null" json:"quantity"`
	FarmingType FarmingType `gorm:"size:20;not null" json:"farmingType"`
	PlantPart   PlantPart   `gorm:"size:20;not null" json:"plantPart"`
	Location    Location    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Sensors     Sensors     `gorm:"embedded;embeddedPrefix:sensor_" json:"sensors"`
	Timestamp   time.Time   `gorm:"not null;index:idx_collectors_species_time,priority:2,sort:desc" json:"timestamp"`
}

func (c *Collector) BeforeCreate(_ *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}
