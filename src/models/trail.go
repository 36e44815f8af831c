package models

import (
	"time"

	"github.com/google/uuid"
)

// TrailLog is one activity-log entry. Writes are best-effort and never roll
// back the transaction they trail.
type TrailLog struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	HospitalID uint      `json:"hospital_id,omitempty"`
	StaffID    *uint     `json:"staff_id,omitempty"`
	PatientID  *uint     `json:"patient_id,omitempty"`
	Action     string    `json:"action,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
}
