package common

import (
	"hms/src/models"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrailWriter persists audit entries to the trail_logs table. Failures are
// logged and swallowed so a broken trail never rolls back clinical writes.
type TrailWriter struct {
	DB *gorm.DB
}

func (t *TrailWriter) Record(hospitalID uint, staffID, patientID *uint, action string) {
	entry := models.TrailLog{
		ID:         uuid.New(),
		HospitalID: hospitalID,
		StaffID:    staffID,
		PatientID:  patientID,
		Action:     action,
	}
	if err := t.DB.Create(&entry).Error; err != nil {
		log.Printf("Error writing trail entry %q: %s\n", action, err.Error())
	}
}
