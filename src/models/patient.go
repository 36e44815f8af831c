package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Patient struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Name       string          `json:"name,omitempty"`
	Email      string          `json:"email,omitempty"`
	HIN        string          `gorm:"column:hin;uniqueIndex" json:"hin,omitempty"`
	HospitalID uint            `json:"hospital_id,omitempty"`
	Metadata   *types.Metadata `gorm:"type:jsonb" json:"metadata,omitempty"`
	TenantID   *uuid.UUID      `gorm:"type:uuid" json:"-"`

	Hospital   Hospital    `gorm:"foreignKey:hospital_id" json:"-"`
	Admissions []Admission `gorm:"foreignKey:patient_id;constraint:OnDelete:CASCADE" json:"admissions,omitempty"`

	types.Timestamps
}
