package models

import (
	"hms/src/types"
	"time"

	"github.com/google/uuid"
)

// Admission is one hospitalization episode. Its status and the status of the
// bed it references move together: pending <-> requested, active <-> occupied.
type Admission struct {
	ID         uint                  `gorm:"primarykey" json:"id"`
	PatientID  uint                  `json:"patient_id,omitempty"`
	HospitalID uint                  `json:"hospital_id,omitempty"`
	StaffID    *uint                 `json:"staff_id,omitempty"`
	WardID     uint                  `json:"ward_id,omitempty"`
	BedID      uint                  `json:"bed_id,omitempty"`
	Status     types.AdmissionStatus `gorm:"default:'pending'" json:"status,omitempty"`

	RequestDate      time.Time  `json:"request_date,omitempty"`
	AdmissionDate    *time.Time `json:"admission_date,omitempty"`
	DischargeDate    *time.Time `json:"discharge_date,omitempty"`
	DischargeSummary *string    `json:"discharge_summary,omitempty"`

	TenantID *uuid.UUID `gorm:"type:uuid" json:"-"`

	Patient  Patient  `gorm:"foreignKey:patient_id;constraint:OnDelete:CASCADE" json:"patient,omitempty"`
	Hospital Hospital `gorm:"foreignKey:hospital_id" json:"-"`
	Staff    *Staff   `gorm:"foreignKey:staff_id;constraint:OnDelete:SET NULL" json:"staff,omitempty"`
	Ward     Ward     `gorm:"foreignKey:ward_id" json:"ward,omitempty"`
	Bed      Bed      `gorm:"foreignKey:bed_id" json:"bed,omitempty"`

	types.Timestamps
}
