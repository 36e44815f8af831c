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

// Conflict sub-reasons surfaced to callers. Each names the specific
// state-machine precondition that failed.
const (
	ReasonBedRequested    = "bed already requested"
	ReasonBedOccupied     = "bed occupied"
	ReasonBedWardMismatch = "bed not in target ward"
	ReasonBedNotRequested = "bed is not in requested state"
	ReasonNotPending      = "admission is not pending"
	ReasonNotActive       = "admission is not active"
	ReasonHospitalMismatch = "hospital mismatch"
	ReasonWrongWard        = "staff not assigned to admission ward"
	ReasonPatientAdmitted  = "patient already has an active admission"
)

// RequestAdmission creates a pending admission and flips the target bed to
// requested as one atomic unit. The bed row is locked before its status is
// read; a second request racing on the same bed re-validates after the lock
// and fails with a conflict instead of trusting its stale read.
func (s *Service) RequestAdmission(actor types.Actor, patientID, wardID, bedID uint) (*models.Admission, error) {
	release := s.locks.acquire(bedKey(bedID))

	var admission models.Admission
	var patient models.Patient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ward models.Ward
		if err := tx.
			Where(&models.Ward{ID: wardID, HospitalID: actor.HospitalID}).
			First(&ward).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("ward")
			}
			return err
		}
		if err := tx.
			Where(&models.Patient{ID: patientID, HospitalID: actor.HospitalID}).
			First(&patient).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("patient")
			}
			return err
		}
		var bed models.Bed
		if err := tx.
			Scopes(sc.ForUpdate).
			Where(&models.Bed{ID: bedID}).
			First(&bed).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("bed")
			}
			return err
		}
		if bed.WardID != ward.ID {
			return types.NewConflictError(ReasonBedWardMismatch)
		}
		switch bed.Status {
		case types.BED_REQUESTED:
			return types.NewConflictError(ReasonBedRequested)
		case types.BED_OCCUPIED:
			return types.NewConflictError(ReasonBedOccupied)
		}

		staffID := actor.ID
		admission = models.Admission{
			PatientID:   patient.ID,
			HospitalID:  actor.HospitalID,
			StaffID:     &staffID,
			WardID:      ward.ID,
			BedID:       bed.ID,
			Status:      types.ADMISSION_PENDING,
			RequestDate: time.Now(),
			TenantID:    actor.TenantID,
		}
		if err := tx.Create(&admission).Error; err != nil {
			return err
		}
		res := tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: bed.ID, Status: types.BED_AVAILABLE}).
			Update("status", types.BED_REQUESTED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during request", bed.ID)
		}
		return nil
	})
	// locks are only needed around the transaction; trail and notify run
	// unlocked so a slow sink cannot stall other callers on this bed
	release()
	if err != nil {
		return nil, err
	}

	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &patientID, "request_admission")
	if patient.Email != "" {
		s.notify.Send(patient.Email, "Admission request received",
			fmt.Sprintf("A bed has been requested for you. Reference: admission %d.", admission.ID))
	}
	return &admission, nil
}

// ConfirmAdmission moves a pending admission to active and its bed to
// occupied. The one-active-admission-per-patient invariant is enforced here,
// not at request time.
func (s *Service) ConfirmAdmission(actor types.Actor, admissionID uint) error {
	peek, err := s.peekAdmission(admissionID)
	if err != nil {
		return err
	}
	release := s.locks.acquire(
		admissionKey(admissionID),
		bedKey(peek.BedID),
		patientKey(peek.PatientID),
	)

	var patient models.Patient
	err = s.db.Transaction(func(tx *gorm.DB) error {
		admission, err := loadAdmissionForUpdate(tx, admissionID)
		if err != nil {
			return err
		}
		if admission.HospitalID != actor.HospitalID {
			return types.NewConflictError(ReasonHospitalMismatch)
		}
		if admission.Status != types.ADMISSION_PENDING {
			return types.NewConflictError(ReasonNotPending)
		}
		if actor.WardID != nil && *actor.WardID != admission.WardID {
			return types.NewConflictError(ReasonWrongWard)
		}
		var active int64
		if err := tx.
			Model(&models.Admission{}).
			Where("patient_id = ? AND status = ?", admission.PatientID, types.ADMISSION_ACTIVE).
			Count(&active).
			Error; err != nil {
			return err
		}
		if active > 0 {
			return types.NewConflictError(ReasonPatientAdmitted)
		}
		var bed models.Bed
		if err := tx.
			Scopes(sc.ForUpdate).
			Where(&models.Bed{ID: admission.BedID}).
			First(&bed).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("bed")
			}
			return err
		}
		if bed.Status != types.BED_REQUESTED {
			return types.NewConflictError(ReasonBedNotRequested)
		}

		now := time.Now()
		res := tx.
			Model(&models.Admission{}).
			Where(&models.Admission{ID: admission.ID, Status: types.ADMISSION_PENDING}).
			Updates(map[string]interface{}{
				"status":         types.ADMISSION_ACTIVE,
				"admission_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("admission %d changed status during confirmation", admission.ID)
		}
		res = tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: bed.ID, Status: types.BED_REQUESTED}).
			Update("status", types.BED_OCCUPIED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during confirmation", bed.ID)
		}
		tx.Where(&models.Patient{ID: admission.PatientID}).First(&patient)
		return nil
	})
	release()
	if err != nil {
		return err
	}

	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &peek.PatientID, "confirm_admission")
	if patient.Email != "" {
		s.notify.Send(patient.Email, "Admission confirmed", "Your hospital admission has been confirmed.")
	}
	return nil
}

// CancelAdmission returns a pending admission's bed to the pool without
// going through active.
func (s *Service) CancelAdmission(actor types.Actor, admissionID uint) error {
	peek, err := s.peekAdmission(admissionID)
	if err != nil {
		return err
	}
	release := s.locks.acquire(admissionKey(admissionID), bedKey(peek.BedID))

	err = s.db.Transaction(func(tx *gorm.DB) error {
		admission, err := loadAdmissionForUpdate(tx, admissionID)
		if err != nil {
			return err
		}
		if admission.HospitalID != actor.HospitalID {
			return types.NewConflictError(ReasonHospitalMismatch)
		}
		if admission.Status != types.ADMISSION_PENDING {
			return types.NewConflictError(ReasonNotPending)
		}
		res := tx.
			Model(&models.Admission{}).
			Where(&models.Admission{ID: admission.ID, Status: types.ADMISSION_PENDING}).
			Update("status", types.ADMISSION_CANCELLED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("admission %d changed status during cancellation", admission.ID)
		}
		res = tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: admission.BedID, Status: types.BED_REQUESTED}).
			Update("status", types.BED_AVAILABLE)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during cancellation", admission.BedID)
		}
		return nil
	})
	release()
	if err != nil {
		return err
	}

	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &peek.PatientID, "cancel_admission")
	return nil
}

// DischargePatient closes an active admission and releases its bed.
func (s *Service) DischargePatient(actor types.Actor, admissionID uint, summary string) error {
	peek, err := s.peekAdmission(admissionID)
	if err != nil {
		return err
	}
	release := s.locks.acquire(admissionKey(admissionID), bedKey(peek.BedID))

	var patient models.Patient
	err = s.db.Transaction(func(tx *gorm.DB) error {
		admission, err := loadAdmissionForUpdate(tx, admissionID)
		if err != nil {
			return err
		}
		if admission.HospitalID != actor.HospitalID {
			return types.NewConflictError(ReasonHospitalMismatch)
		}
		if admission.Status != types.ADMISSION_ACTIVE {
			return types.NewConflictError(ReasonNotActive)
		}
		now := time.Now()
		res := tx.
			Model(&models.Admission{}).
			Where(&models.Admission{ID: admission.ID, Status: types.ADMISSION_ACTIVE}).
			Updates(map[string]interface{}{
				"status":            types.ADMISSION_DISCHARGED,
				"discharge_date":    now,
				"discharge_summary": summary,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("admission %d changed status during discharge", admission.ID)
		}
		res = tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: admission.BedID, Status: types.BED_OCCUPIED}).
			Update("status", types.BED_AVAILABLE)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during discharge", admission.BedID)
		}
		tx.Where(&models.Patient{ID: admission.PatientID}).First(&patient)
		return nil
	})
	release()
	if err != nil {
		return err
	}

	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &peek.PatientID, "discharge_patient")
	if patient.Email != "" {
		s.notify.Send(patient.Email, "Discharge complete", "You have been discharged. Take care.")
	}
	return nil
}

// TransferPatient moves an active admission to a new ward/bed pair: release
// the old bed, occupy the new bed and repoint the admission, as one atomic
// four-write group. A destination bed in requested state is rejected as well
// as an occupied one, since occupying it would orphan its pending admission.
func (s *Service) TransferPatient(actor types.Actor, admissionID, newWardID, newBedID uint) error {
	peek, err := s.peekAdmission(admissionID)
	if err != nil {
		return err
	}
	release := s.locks.acquire(
		admissionKey(admissionID),
		bedKey(peek.BedID),
		bedKey(newBedID),
	)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		admission, err := loadAdmissionForUpdate(tx, admissionID)
		if err != nil {
			return err
		}
		if admission.HospitalID != actor.HospitalID {
			return types.NewConflictError(ReasonHospitalMismatch)
		}
		if admission.Status != types.ADMISSION_ACTIVE {
			return types.NewConflictError(ReasonNotActive)
		}
		var newWard models.Ward
		if err := tx.
			Where(&models.Ward{ID: newWardID, HospitalID: actor.HospitalID}).
			First(&newWard).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("ward")
			}
			return err
		}
		var newBed models.Bed
		if err := tx.
			Scopes(sc.ForUpdate).
			Where(&models.Bed{ID: newBedID}).
			First(&newBed).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("bed")
			}
			return err
		}
		if newBed.WardID != newWard.ID {
			return types.NewConflictError(ReasonBedWardMismatch)
		}
		switch newBed.Status {
		case types.BED_OCCUPIED:
			return types.NewConflictError(ReasonBedOccupied)
		case types.BED_REQUESTED:
			return types.NewConflictError(ReasonBedRequested)
		}

		res := tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: admission.BedID, Status: types.BED_OCCUPIED}).
			Update("status", types.BED_AVAILABLE)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during transfer", admission.BedID)
		}
		res = tx.
			Model(&models.Bed{}).
			Where(&models.Bed{ID: newBed.ID, Status: types.BED_AVAILABLE}).
			Update("status", types.BED_OCCUPIED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("bed %d changed status during transfer", newBed.ID)
		}
		res = tx.
			Model(&models.Admission{}).
			Where(&models.Admission{ID: admission.ID, Status: types.ADMISSION_ACTIVE}).
			Updates(map[string]interface{}{
				"ward_id": newWard.ID,
				"bed_id":  newBed.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConcurrencyError("admission %d changed status during transfer", admission.ID)
		}
		return nil
	})
	release()
	if err != nil {
		return err
	}

	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, &peek.PatientID, "transfer_patient")
	return nil
}

// PendingAdmissions is the confirmation queue: oldest request first. Staff
// with a ward assignment only see their own ward's queue.
func (s *Service) PendingAdmissions(actor types.Actor) ([]models.Admission, error) {
	q := s.db.
		Model(&models.Admission{}).
		Scopes(sc.WithHospital(actor.HospitalID), sc.WithPendingStatus).
		Preload("Patient").
		Preload("Bed").
		Order("request_date asc")
	if actor.WardID != nil {
		q = q.Where("ward_id = ?", *actor.WardID)
	}
	var admissions []models.Admission
	if err := q.Find(&admissions).Error; err != nil {
		return nil, err
	}
	return admissions, nil
}

// AdmissionHistory lists confirmed episodes for a patient, most recent first.
func (s *Service) AdmissionHistory(actor types.Actor, patientID uint) ([]models.Admission, error) {
	var admissions []models.Admission
	if err := s.db.
		Model(&models.Admission{}).
		Scopes(sc.WithHospital(actor.HospitalID)).
		Where("patient_id = ?", patientID).
		Where("status IN ?", []types.AdmissionStatus{types.ADMISSION_ACTIVE, types.ADMISSION_DISCHARGED}).
		Order("admission_date desc").
		Find(&admissions).
		Error; err != nil {
		return nil, err
	}
	return admissions, nil
}

func (s *Service) GetAdmission(actor types.Actor, id uint) (*models.Admission, error) {
	var admission models.Admission
	if err := s.db.
		Where(&models.Admission{ID: id, HospitalID: actor.HospitalID}).
		Preload("Patient").
		Preload("Ward").
		Preload("Bed").
		First(&admission).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("admission")
		}
		return nil, err
	}
	return &admission, nil
}

// peekAdmission reads the resource ids an admission transition touches, so
// the keyed locks can be taken before the transaction opens. Everything read
// here is re-validated under the locks.
func (s *Service) peekAdmission(id uint) (*models.Admission, error) {
	var peek models.Admission
	if err := s.db.
		Select("id", "bed_id", "patient_id").
		Where(&models.Admission{ID: id}).
		First(&peek).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("admission")
		}
		return nil, err
	}
	return &peek, nil
}

func loadAdmissionForUpdate(tx *gorm.DB, id uint) (*models.Admission, error) {
	var admission models.Admission
	if err := tx.
		Scopes(sc.ForUpdate).
		Where(&models.Admission{ID: id}).
		First(&admission).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("admission")
		}
		return nil, err
	}
	return &admission, nil
}
