package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Bed struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	WardID    uint            `gorm:"uniqueIndex:wardbed" json:"ward_id,omitempty"`
	BedNumber uint            `gorm:"uniqueIndex:wardbed" json:"bed_number,omitempty"`
	Status    types.BedStatus `gorm:"default:'available'" json:"status,omitempty"`
	TenantID  *uuid.UUID      `gorm:"type:uuid" json:"-"`

	Ward Ward `gorm:"foreignKey:ward_id" json:"ward,omitempty"`

	types.Timestamps
}
