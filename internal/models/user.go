package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCollector       UserRole = "collector"
	RoleTransporter     UserRole = "transporter"
	RoleProcessingPlant UserRole = "processing_plant"
	RoleLabTesting      UserRole = "lab_testing"
	RoleConsumer        UserRole = "consumer"
	RoleManufacturer    UserRole = "manufacturer"
)

var roleLabels = map[UserRole]string{
	RoleCollector:       "Collector",
	RoleTransporter:     "Transporter",
	RoleProcessingPlant: "Processing Plant",
	RoleLabTesting:      "Lab Technician",
	RoleConsumer:        "Consumer",
	RoleManufacturer:    "Manufacturer",
}

func (r UserRole) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r UserRole) Label() string { return roleLabels[r] }

// User is created at signup; the role never changes afterwards.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:32;not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}
