package models

import (
	"hms/src/types"
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID            uint                    `gorm:"primarykey" json:"id"`
	PatientID     uint                    `json:"patient_id,omitempty"`
	StaffID       *uint                   `json:"staff_id,omitempty"`
	HospitalID    uint                    `json:"hospital_id,omitempty"`
	Status        types.AppointmentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ScheduledTime time.Time               `json:"scheduled_time,omitempty"`
	Type          string                  `gorm:"default:'consultation'" json:"type,omitempty"`
	Note          *string                 `json:"note,omitempty"`
	TenantID      *uuid.UUID              `gorm:"type:uuid" json:"-"`

	Patient  Patient  `gorm:"foreignKey:patient_id;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Staff    *Staff   `gorm:"foreignKey:staff_id;constraint:OnDelete:SET NULL" json:"staff,omitempty"`
	Hospital Hospital `gorm:"foreignKey:hospital_id" json:"-"`

	types.Timestamps
}
