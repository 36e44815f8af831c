package models

import (
	"hms/src/types"
	"time"

	"github.com/google/uuid"
)

// HandoverLog is the immutable audit record of one shift handover. It is
// written once inside the handover transaction and never updated.
type HandoverLog struct {
	ID                  uuid.UUID   `gorm:"primarykey;type:uuid" json:"id"`
	HospitalID          uint        `json:"hospital_id,omitempty"`
	FromStaffID         uint        `json:"from_staff_id,omitempty"`
	ToStaffID           uint        `json:"to_staff_id,omitempty"`
	IncludeAppointments bool        `json:"include_appointments"`
	IncludePatients     bool        `json:"include_patients"`
	ItemsTransferred    types.JSONB `gorm:"type:jsonb" json:"items_transferred"`
	TenantID            *uuid.UUID  `gorm:"type:uuid" json:"-"`

	FromStaff Staff `gorm:"foreignKey:from_staff_id" json:"-"`
	ToStaff   Staff `gorm:"foreignKey:to_staff_id" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
}
