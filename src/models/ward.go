package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Ward struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Name       string     `json:"name,omitempty"`
	Slug       string     `json:"slug,omitempty"`
	HospitalID uint       `json:"hospital_id,omitempty"`
	TotalBeds  uint       `json:"total_beds,omitempty"`
	TenantID   *uuid.UUID `gorm:"type:uuid" json:"-"`

	Hospital Hospital `gorm:"foreignKey:hospital_id" json:"-"`
	Beds     []Bed    `gorm:"foreignKey:ward_id" json:"beds,omitempty"`

	Stats *WardStats `gorm:"-" json:"stats,omitempty"`

	types.Timestamps
}

type WardStats struct {
	WardID    uint `json:"ward_id,omitempty"`
	Available uint `json:"available"`
	Requested uint `json:"requested"`
	Occupied  uint `json:"occupied"`
}
