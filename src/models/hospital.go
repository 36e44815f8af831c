package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Hospital struct {
	ID           uint       `gorm:"primarykey;uniqueIndex:slugid" json:"id"`
	Name         string     `json:"name,omitempty"`
	Slug         string     `gorm:"uniqueIndex:slugid" json:"slug"`
	HIN          string     `gorm:"column:hin;uniqueIndex" json:"hin,omitempty"`
	Address      string     `json:"address,omitempty"`
	ContactEmail string     `json:"email,omitempty"`
	TenantID     *uuid.UUID `gorm:"type:uuid" json:"-"`

	Wards []Ward  `gorm:"foreignKey:hospital_id" json:"wards,omitempty"`
	Staff []Staff `gorm:"foreignKey:hospital_id" json:"-"`

	types.Timestamps
}
