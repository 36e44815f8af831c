package common

import (
	"errors"
	"hms/src/models"
	sc "hms/src/models/scopes"
	"hms/src/types"
	"log"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CreateWard creates the ward row and eagerly creates exactly totalBeds bed
// rows numbered 1..totalBeds, all available. The bed pool is fixed for the
// lifetime of the ward.
func (s *Service) CreateWard(actor types.Actor, name string, totalBeds int) (*models.Ward, error) {
	if totalBeds <= 0 {
		return nil, types.NewValidationError("total_beds must be greater than zero")
	}
	ward := models.Ward{
		Name:       name,
		Slug:       slug.Make(name),
		HospitalID: actor.HospitalID,
		TotalBeds:  uint(totalBeds),
		TenantID:   actor.TenantID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ward).Error; err != nil {
			return err
		}
		beds := make([]models.Bed, 0, totalBeds)
		for n := 1; n <= totalBeds; n++ {
			beds = append(beds, models.Bed{
				WardID:    ward.ID,
				BedNumber: uint(n),
				Status:    types.BED_AVAILABLE,
				TenantID:  actor.TenantID,
			})
		}
		if err := tx.Create(&beds).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating ward %q: %s\n", name, err.Error())
		return nil, err
	}
	staffID := actor.ID
	s.trail.Record(actor.HospitalID, &staffID, nil, "create_ward")
	return &ward, nil
}

func (s *Service) ListWards(actor types.Actor) ([]models.Ward, error) {
	var wards []models.Ward
	if err := s.db.
		Scopes(sc.WithHospital(actor.HospitalID)).
		Order("name asc").
		Find(&wards).
		Error; err != nil {
		return nil, err
	}
	return wards, nil
}

// ListBeds returns the ward's beds ordered by bed number. Read-only.
func (s *Service) ListBeds(actor types.Actor, wardID uint) ([]models.Bed, error) {
	var ward models.Ward
	if err := s.db.
		Where(&models.Ward{ID: wardID, HospitalID: actor.HospitalID}).
		First(&ward).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFoundError("ward")
		}
		return nil, err
	}
	var beds []models.Bed
	if err := s.db.
		Where(&models.Bed{WardID: ward.ID}).
		Scopes(sc.ByBedNumber).
		Find(&beds).
		Error; err != nil {
		return nil, err
	}
	return beds, nil
}

// WardOccupancy counts the ward's beds by status.
func (s *Service) WardOccupancy(actor types.Actor, wardID uint) (*models.WardStats, error) {
	beds, err := s.ListBeds(actor, wardID)
	if err != nil {
		return nil, err
	}
	stats := models.WardStats{WardID: wardID}
	for _, bed := range beds {
		switch bed.Status {
		case types.BED_AVAILABLE:
			stats.Available++
		case types.BED_REQUESTED:
			stats.Requested++
		case types.BED_OCCUPIED:
			stats.Occupied++
		}
	}
	return &stats, nil
}
