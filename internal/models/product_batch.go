package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductBatch is a manufactured lot composed of several lab-tested lots.
type ProductBatch struct {
	ID               string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ManufacturerID   string     `gorm:"type:varchar(36);index;not null" json:"manufacturerId"`
	ProductName      string     `gorm:"size:200;not null" json:"productName"`
	Quantity         float64    `gorm:"not null" json:"quantity"`
	WeightPerProduct float64    `gorm:"not null" json:"weightPerProduct"`
	Location         string     `gorm:"size:255;not null" json:"location"`
	VedaUsed         SourceText `gorm:"size:20;not null" json:"vedaUsed"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	LabTests []LabTest `gorm:"many2many:product_batch_lab_tests" json:"labTests"`
}

func (b *ProductBatch) BeforeCreate(_ *gorm.DB) error {
	b.ID = ensureID(b.ID)
	return nil
}
