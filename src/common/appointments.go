package common

import (
	"errors"
	"fmt"
	"hms/src/models"
	sc "hms/src/models/scopes"
	"hms/src/types"
	"time"

	"gorm.io/gorm"
)

const (
	ReasonNotDoctor      = "target staff is not a doctor"
	ReasonNotConfirmable = "appointment is not pending"
	ReasonNotCompletable = "appointment is not open"
)

// BookAppointment creates a pending appointment for a future time slot,
// bound to the staff member who will hold it (a triage nurse or a doctor).
// The slot is a request, not a reservation: no capacity is held.
func (s *Service) BookAppointment(actor types.Actor, patientID, staffID uint, scheduledTime time.Time, apptType string, note *string) (*models.Appointment, error) {
	if !scheduledTime.After(time.Now()) {
		return nil, types.NewValidationError("scheduled_time must be in the future")
	}
	var patient models.Patient
	if err := s.db.
		Where(&models.Patient{ID: patientID, HospitalID: actor.HospitalID}).
		First(&patient).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("patient")
		}
		return nil, err
	}
	var assignee models.Staff
	if err := s.db.
		Where(&models.Staff{ID: staffID, HospitalID: actor.HospitalID}).
		First(&assignee).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("staff")
		}
		return nil, err
	}
	appointment := models.Appointment{
		PatientID:     patient.ID,
		StaffID:       &assignee.ID,
		HospitalID:    actor.HospitalID,
		Status:        types.APPOINTMENT_PENDING,
		ScheduledTime: scheduledTime,
		Note:          note,
		TenantID:      actor.TenantID,
	}
	if apptType != "" {
		appointment.Type = apptType
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, err
	}
	actorID := actor.ID
	s.trail.Record(actor.HospitalID, &actorID, &patientID, "book_appointment")
	if patient.Email != "" {
		s.notify.Send(patient.Email, "Appointment booked",
			fmt.Sprintf("Your appointment is scheduled for %s.", scheduledTime.Format(time.RFC1123)))
	}
	return &appointment, nil
}

// AssignToDoctor repoints an appointment at a doctor. Reassignment is legal
// in any status; only staff_id changes.
func (s *Service) AssignToDoctor(actor types.Actor, appointmentID, staffID uint) error {
	release := s.locks.acquire(appointmentKey(appointmentID), staffKey(staffID))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		appointment, err := loadAppointmentForUpdate(tx, appointmentID, actor.HospitalID)
		if err != nil {
			return err
		}
		var doctor models.Staff
		if err := tx.
			Where(&models.Staff{ID: staffID, HospitalID: actor.HospitalID}).
			First(&doctor).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("staff")
			}
			return err
		}
		if doctor.Role != types.ROLE_DOCTOR {
			return types.NewConflictError(ReasonNotDoctor)
		}
		return tx.
			Model(&models.Appointment{}).
			Where("id = ?", appointment.ID).
			Update("staff_id", doctor.ID).
			Error
	})
	release()
	if err != nil {
		return err
	}
	actorID := actor.ID
	s.trail.Record(actor.HospitalID, &actorID, nil, "assign_appointment")
	return nil
}

// ConfirmAppointment moves a pending appointment to confirmed.
func (s *Service) ConfirmAppointment(actor types.Actor, appointmentID uint) error {
	return s.transitionAppointment(actor, appointmentID, "confirm_appointment",
		[]types.AppointmentStatus{types.APPOINTMENT_PENDING},
		types.APPOINTMENT_CONFIRMED, ReasonNotConfirmable)
}

// CompleteAppointment closes out a visit. Walk-ins go straight from pending
// to completed, so both open states are accepted.
func (s *Service) CompleteAppointment(actor types.Actor, appointmentID uint) error {
	return s.transitionAppointment(actor, appointmentID, "complete_appointment",
		[]types.AppointmentStatus{types.APPOINTMENT_PENDING, types.APPOINTMENT_CONFIRMED},
		types.APPOINTMENT_COMPLETED, ReasonNotCompletable)
}

// CancelAppointment cancels any open appointment.
func (s *Service) CancelAppointment(actor types.Actor, appointmentID uint) error {
	return s.transitionAppointment(actor, appointmentID, "cancel_appointment",
		[]types.AppointmentStatus{types.APPOINTMENT_PENDING, types.APPOINTMENT_CONFIRMED},
		types.APPOINTMENT_CANCELLED, ReasonNotCompletable)
}

func (s *Service) transitionAppointment(actor types.Actor, id uint, action string, from []types.AppointmentStatus, to types.AppointmentStatus, reason string) error {
	release := s.locks.acquire(appointmentKey(id))

	var patientID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		appointment, err := loadAppointmentForUpdate(tx, id, actor.HospitalID)
		if err != nil {
			return err
		}
		ok := false
		for _, st := range from {
			if appointment.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return types.NewConflictError("%s", reason)
		}
		patientID = appointment.PatientID
		res := tx.
			Model(&models.Appointment{}).
			Where("id = ? AND status IN ?", appointment.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("appointment %d changed status during %s", appointment.ID, action)
		}
		return nil
	})
	release()
	if err != nil {
		return err
	}
	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &patientID, action)
	return nil
}

// ListAppointments returns a staff member's open queue soonest-first, or
// their terminal history most-recent-first when status filters for one.
func (s *Service) ListAppointments(actor types.Actor, staffID uint, status types.AppointmentStatus) ([]models.Appointment, error) {
	q := s.db.
		Model(&models.Appointment{}).
		Scopes(sc.WithHospital(actor.HospitalID)).
		Where("staff_id = ?", staffID).
		Preload("Patient")
	switch status {
	case "":
		q = q.
			Where("status IN ?", []types.AppointmentStatus{types.APPOINTMENT_PENDING, types.APPOINTMENT_CONFIRMED}).
			Order("scheduled_time asc")
	case types.APPOINTMENT_COMPLETED, types.APPOINTMENT_CANCELLED:
		q = q.Where("status = ?", status).Order("scheduled_time desc")
	default:
		q = q.Where("status = ?", status).Order("scheduled_time asc")
	}
	var appointments []models.Appointment
	if err := q.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// LastVisited resolves, for a reference appointment, the same patient's most
// recent completed visit strictly before it. Recomputed on every call, never
// stored: completion status can change after the fact. Returns nil with no
// error when there is no prior completed visit.
func (s *Service) LastVisited(actor types.Actor, appointmentID uint) (*models.Appointment, error) {
	var ref models.Appointment
	if err := s.db.
		Where(&models.Appointment{ID: appointmentID, HospitalID: actor.HospitalID}).
		First(&ref).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("appointment")
		}
		return nil, err
	}
	var appointment models.Appointment
	err := s.db.
		Where(&models.Appointment{PatientID: ref.PatientID, Status: types.APPOINTMENT_COMPLETED}).
		Where("scheduled_time < ? AND id <> ?", ref.ScheduledTime, ref.ID).
		Order("scheduled_time desc").
		First(&appointment).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func loadAppointmentForUpdate(tx *gorm.DB, id, hospitalID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := tx.
		Scopes(sc.ForUpdate).
		Where(&models.Appointment{ID: id, HospitalID: hospitalID}).
		First(&appointment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("appointment")
		}
		return nil, err
	}
	return &appointment, nil
}
