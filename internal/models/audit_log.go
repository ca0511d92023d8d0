package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
)

// AuditLog is a write-once trail of stage submissions.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	UserID   string `gorm:"type:varchar(36);index" json:"userId"`
	UserName string `gorm:"size:100" json:"userName"` // denormalized

	// collector, transport, processing, lab_test, product_batch
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   string `gorm:"type:varchar(36);index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`
	AfterData   string      `gorm:"type:text" json:"afterData"`
}
