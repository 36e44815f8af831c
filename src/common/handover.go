package common

import (
	"errors"
	"fmt"
	"hms/src/models"
	sc "hms/src/models/scopes"
	"hms/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReasonOutgoingNotNurse = "outgoing staff is not a nurse"
	ReasonTargetNotNurse   = "handover target is not a nurse"
)

// HandoverShift reassigns the outgoing nurse's open appointments and
// pending/active admissions to the incoming nurse and writes the handover
// log, all in one transaction. Categories the caller excludes are left
// untouched but still appear in the log as empty lists.
func (s *Service) HandoverShift(actor types.Actor, toStaffID uint, includeAppointments, includePatients bool) (*models.HandoverLog, error) {
	fromStaffID := actor.ID
	if fromStaffID == toStaffID {
		return nil, types.NewValidationError("cannot hand over a shift to yourself")
	}
	release := s.locks.acquire(staffKey(fromStaffID), staffKey(toStaffID))

	var entry models.HandoverLog
	var incoming models.Staff
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var outgoing models.Staff
		if err := tx.
			Where(&models.Staff{ID: fromStaffID, HospitalID: actor.HospitalID}).
			First(&outgoing).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("staff")
			}
			return err
		}
		if outgoing.Role != types.ROLE_NURSE {
			return types.NewConflictError(ReasonOutgoingNotNurse)
		}
		if err := tx.
			Where(&models.Staff{ID: toStaffID, HospitalID: actor.HospitalID}).
			First(&incoming).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("staff")
			}
			return err
		}
		if incoming.Role != types.ROLE_NURSE {
			return types.NewConflictError(ReasonTargetNotNurse)
		}

		appointmentIDs := []uint{}
		if includeAppointments {
			if err := tx.
				Model(&models.Appointment{}).
				Where("staff_id = ? AND status IN ?", outgoing.ID,
					[]types.AppointmentStatus{types.APPOINTMENT_PENDING, types.APPOINTMENT_CONFIRMED}).
				Order("id asc").
				Pluck("id", &appointmentIDs).
				Error; err != nil {
				return err
			}
			if len(appointmentIDs) > 0 {
				if err := tx.
					Model(&models.Appointment{}).
					Scopes(sc.WithIDs(appointmentIDs...)).
					Update("staff_id", incoming.ID).
					Error; err != nil {
					return err
				}
			}
		}
		admissionIDs := []uint{}
		if includePatients {
			if err := tx.
				Model(&models.Admission{}).
				Where("staff_id = ? AND status IN ?", outgoing.ID,
					[]types.AdmissionStatus{types.ADMISSION_PENDING, types.ADMISSION_ACTIVE}).
				Order("id asc").
				Pluck("id", &admissionIDs).
				Error; err != nil {
				return err
			}
			if len(admissionIDs) > 0 {
				if err := tx.
					Model(&models.Admission{}).
					Scopes(sc.WithIDs(admissionIDs...)).
					Update("staff_id", incoming.ID).
					Error; err != nil {
					return err
				}
			}
		}

		// Both keys are always present so readers of the log never have
		// to distinguish "excluded" from "missing".
		entry = models.HandoverLog{
			ID:                  uuid.New(),
			HospitalID:          actor.HospitalID,
			FromStaffID:         outgoing.ID,
			ToStaffID:           incoming.ID,
			IncludeAppointments: includeAppointments,
			IncludePatients:     includePatients,
			ItemsTransferred: types.JSONB{
				"appointments": appointmentIDs,
				"admissions":   admissionIDs,
			},
			TenantID: actor.TenantID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return nil
	})
	release()
	if err != nil {
		return nil, err
	}

	s.trail.Record(actor.HospitalID, &fromStaffID, nil, "handover_shift")
	if incoming.Email != "" {
		s.notify.Send(incoming.Email, "Shift handover",
			fmt.Sprintf("You have received a shift handover. Reference: %s.", entry.ID.String()))
	}
	return &entry, nil
}

// ListHandovers returns the hospital's handover log, most recent first.
func (s *Service) ListHandovers(actor types.Actor) ([]models.HandoverLog, error) {
	var entries []models.HandoverLog
	if err := s.db.
		Scopes(sc.WithHospital(actor.HospitalID)).
		Order("created_at desc").
		Find(&entries).
		Error; err != nil {
		return nil, err
	}
	return entries, nil
}
