package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type Metadata map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &a)
	case string:
		return json.Unmarshal([]byte(v), &a)
	default:
		return errors.New("unsupported type for JSONB")
	}
}

func (a Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *Metadata) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &a)
	case string:
		return json.Unmarshal([]byte(v), &a)
	default:
		return errors.New("unsupported type for Metadata")
	}
}

type BedStatus string

const (
	BED_AVAILABLE BedStatus = "available"
	BED_REQUESTED BedStatus = "requested"
	BED_OCCUPIED  BedStatus = "occupied"
)

type AdmissionStatus string

const (
	ADMISSION_PENDING    AdmissionStatus = "pending"
	ADMISSION_ACTIVE     AdmissionStatus = "active"
	ADMISSION_CANCELLED  AdmissionStatus = "cancelled"
	ADMISSION_DISCHARGED AdmissionStatus = "discharged"
)

type AppointmentStatus string

const (
	APPOINTMENT_PENDING   AppointmentStatus = "pending"
	APPOINTMENT_CONFIRMED AppointmentStatus = "confirmed"
	APPOINTMENT_COMPLETED AppointmentStatus = "completed"
	APPOINTMENT_CANCELLED AppointmentStatus = "cancelled"
)

type StaffRole string

const (
	ROLE_DOCTOR       StaffRole = "doctor"
	ROLE_NURSE        StaffRole = "nurse"
	ROLE_RECEPTIONIST StaffRole = "receptionist"
)

// Actor is the already-authenticated staff identity the API layer hands to the
// allocation core. WardID is nil for staff without a ward assignment.
type Actor struct {
	ID         uint
	HospitalID uint
	Role       StaffRole
	WardID     *uint
	TenantID   *uuid.UUID
}

type CreateWardRequestBody struct {
	Name      string `json:"name" binding:"required"`
	TotalBeds int    `json:"total_beds" binding:"required"`
}

type RequestAdmissionRequestBody struct {
	PatientID uint `json:"patient" binding:"required"`
	WardID    uint `json:"ward" binding:"required"`
	BedID     uint `json:"bed" binding:"required"`
}

type DischargeRequestBody struct {
	Summary string `json:"summary" binding:"required"`
}

type TransferRequestBody struct {
	WardID uint `json:"ward" binding:"required"`
	BedID  uint `json:"bed" binding:"required"`
}

type BookAppointmentRequestBody struct {
	PatientID     uint   `json:"patient" binding:"required"`
	StaffID       uint   `json:"staff" binding:"required"`
	ScheduledTime string `json:"scheduled_time" binding:"required,futuredate"`
	Type          string `json:"type,omitempty"`
	Note          string `json:"note,omitempty"`
}

type AssignAppointmentRequestBody struct {
	StaffID uint `json:"staff" binding:"required"`
}

type HandoverRequestBody struct {
	ToStaffID           uint `json:"to_staff" binding:"required"`
	IncludeAppointments bool `json:"include_appointments"`
	IncludePatients     bool `json:"include_patients"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type AppointmentQueryFilters struct {
	Status string `form:"status,omitempty"`
	Staff  uint   `form:"staff,omitempty"`
}
