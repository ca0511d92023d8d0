package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LabTest struct {
	ID               string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	CollectorID      string                      `gorm:"type:varchar(36);index;not null" json:"collectorId"`
	LabTechnicianID  string                      `gorm:"type:varchar(36);index;not null" json:"labTechnicianId"`
	TestedQuantityKg float64                     `gorm:"not null" json:"testedQuantityKg"`
	TestType         TestType                    `gorm:"size:20;not null" json:"testType"`
	Result           string                      `gorm:"type:text;not null" json:"result"`
	CertificateLinks datatypes.JSONSlice[string] `json:"certificateLinks"`
	Location         Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Timestamp        time.Time                   `gorm:"not null;index" json:"timestamp"`
}

func (l *LabTest) BeforeCreate(_ *gorm.DB) error {
	l.ID = ensureID(l.ID)
	if l.CertificateLinks == nil {
		l.CertificateLinks = datatypes.JSONSlice[string]{}
	}
	return nil
}
