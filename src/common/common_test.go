package common

import (
	"fmt"
	"hms/src/models"
	"hms/src/types"
	"log"
	"sync"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// trailRecorder captures audit writes in-memory so tests can assert on them.
type trailRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (t *trailRecorder) Record(hospitalID uint, staffID, patientID *uint, action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, action)
}

func (t *trailRecorder) actions() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

type sentMail struct {
	Recipient string
	Subject   string
}

type notifyRecorder struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *notifyRecorder) Send(recipient, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{Recipient: recipient, Subject: subject})
}

func (n *notifyRecorder) messages() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMail, len(n.sent))
	copy(out, n.sent)
	return out
}

func newTestDB(t *testing.T) *gorm.DB {
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("error opening test database: %s", err.Error())
	}
	inner, err := d.DB()
	if err != nil {
		t.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	err = d.AutoMigrate(
		&models.Hospital{},
		&models.Staff{},
		&models.Patient{},
		&models.Ward{},
		&models.Bed{},
		&models.Admission{},
		&models.Appointment{},
		&models.HandoverLog{},
		&models.TrailLog{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("error migration: %s", err.Error())
	}
	return d
}

// ServiceTestSuite seeds one hospital with a doctor, two nurses, two patients
// and a three-bed ward.
type ServiceTestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Trail  *trailRecorder
	Notify *notifyRecorder
	Svc    *Service

	Hospital models.Hospital
	Doctor   models.Staff
	Nurse    models.Staff
	Nurse2   models.Staff
	Patient  models.Patient
	Patient2 models.Patient
	Ward     models.Ward
	Beds     []models.Bed
}

func (s *ServiceTestSuite) SetupTest() {
	s.DB = newTestDB(s.T())
	s.Trail = &trailRecorder{}
	s.Notify = &notifyRecorder{}
	s.Svc = NewService(s.DB, s.Trail, s.Notify)

	s.Hospital = models.Hospital{Name: "General Hospital", Slug: "general-hospital", HIN: faker.UUIDDigit()}
	if err := s.DB.Create(&s.Hospital).Error; err != nil {
		log.Fatalf("Could not create hospital due to error: %s\n", err.Error())
	}

	s.Doctor = s.seedStaff(types.ROLE_DOCTOR, nil)
	s.Nurse = s.seedStaff(types.ROLE_NURSE, nil)
	s.Nurse2 = s.seedStaff(types.ROLE_NURSE, nil)
	s.Patient = s.seedPatient()
	s.Patient2 = s.seedPatient()

	ward, err := s.Svc.CreateWard(s.doctorActor(), "West Wing", 3)
	s.Require().NoError(err)
	s.Ward = *ward
	beds, err := s.Svc.ListBeds(s.doctorActor(), ward.ID)
	s.Require().NoError(err)
	s.Beds = beds
}

func (s *ServiceTestSuite) seedStaff(role types.StaffRole, wardID *uint) models.Staff {
	staff := models.Staff{
		Name:       faker.Name(),
		Email:      faker.Email(),
		Role:       role,
		HospitalID: s.Hospital.ID,
		WardID:     wardID,
	}
	s.Require().NoError(s.DB.Create(&staff).Error)
	return staff
}

func (s *ServiceTestSuite) seedPatient() models.Patient {
	patient := models.Patient{
		Name:       faker.Name(),
		Email:      faker.Email(),
		HIN:        faker.UUIDDigit(),
		HospitalID: s.Hospital.ID,
	}
	s.Require().NoError(s.DB.Create(&patient).Error)
	return patient
}

func (s *ServiceTestSuite) actorFor(staff models.Staff) types.Actor {
	return types.Actor{
		ID:         staff.ID,
		HospitalID: staff.HospitalID,
		Role:       staff.Role,
		WardID:     staff.WardID,
	}
}

func (s *ServiceTestSuite) doctorActor() types.Actor {
	return s.actorFor(s.Doctor)
}

func (s *ServiceTestSuite) nurseActor() types.Actor {
	return s.actorFor(s.Nurse)
}

func (s *ServiceTestSuite) bedStatus(id uint) types.BedStatus {
	var bed models.Bed
	s.Require().NoError(s.DB.First(&bed, id).Error)
	return bed.Status
}

func (s *ServiceTestSuite) admissionStatus(id uint) types.AdmissionStatus {
	var admission models.Admission
	s.Require().NoError(s.DB.First(&admission, id).Error)
	return admission.Status
}

func (s *ServiceTestSuite) requestAdmission(patientID uint, bed models.Bed) *models.Admission {
	admission, err := s.Svc.RequestAdmission(s.nurseActor(), patientID, s.Ward.ID, bed.ID)
	s.Require().NoError(err)
	return admission
}

func (s *ServiceTestSuite) activeAdmission(patientID uint, bed models.Bed) *models.Admission {
	admission := s.requestAdmission(patientID, bed)
	s.Require().NoError(s.Svc.ConfirmAdmission(s.nurseActor(), admission.ID))
	return admission
}

func (s *ServiceTestSuite) secondWard(totalBeds int) (models.Ward, []models.Bed) {
	ward, err := s.Svc.CreateWard(s.doctorActor(), fmt.Sprintf("East Wing %s", faker.Word()), totalBeds)
	s.Require().NoError(err)
	beds, err := s.Svc.ListBeds(s.doctorActor(), ward.ID)
	s.Require().NoError(err)
	return *ward, beds
}
