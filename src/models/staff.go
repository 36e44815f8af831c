package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Staff struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	Name       string          `json:"name,omitempty"`
	Email      string          `gorm:"uniqueIndex" json:"email,omitempty"`
	Role       types.StaffRole `json:"role,omitempty"`
	HospitalID uint            `json:"hospital_id,omitempty"`
	WardID     *uint           `json:"ward_id,omitempty"`
	Metadata   *types.Metadata `gorm:"type:jsonb" json:"metadata,omitempty"`
	TenantID   *uuid.UUID      `gorm:"type:uuid" json:"-"`

	Hospital Hospital `gorm:"foreignKey:hospital_id" json:"-"`
	Ward     *Ward    `gorm:"foreignKey:ward_id" json:"ward,omitempty"`

	types.Timestamps
}
