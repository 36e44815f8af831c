package main

import (
	"encoding/json"
	"fmt"
	"hms/src/common"
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-faker/faker/v4"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Token *string

	Hospital models.Hospital
	Doctor   models.Staff
	Nurse    models.Staff
	Patient  models.Patient
}

var dbi *gorm.DB

type noopNotifier struct{}

func (noopNotifier) Send(recipient, subject, body string) {}

func authMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var staff models.Staff
	sid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	err = dbi.
		Model(&models.Staff{}).
		Where(&models.Staff{ID: uint(sid)}).
		First(&staff).
		Error
	if err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", staff.ID)
	ctx.Set("email", staff.Email)
	ctx.Set("role", staff.Role)
	ctx.Set("hospital", staff.HospitalID)
	if staff.WardID != nil {
		ctx.Set("ward", *staff.WardID)
	}
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
	}

	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("error opening test database: %s", err.Error())
	}
	inner, err := d.DB()
	if err != nil {
		log.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	db.NewDB(d)
	s.DB = d
	dbi = d

	err = dbi.AutoMigrate(
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
		log.Fatalf("error migration: %s", err.Error())
	}

	service = common.NewService(d, &common.TrailWriter{DB: d}, noopNotifier{})

	s.Hospital = models.Hospital{Name: "Test Hospital", Slug: "test-hospital"}
	s.Doctor = models.Staff{
		Name:  faker.Name(),
		Email: faker.Email(),
		Role:  types.ROLE_DOCTOR,
	}
	s.Nurse = models.Staff{
		Name:  faker.Name(),
		Email: faker.Email(),
		Role:  types.ROLE_NURSE,
	}
	s.Patient = models.Patient{
		Name:  faker.Name(),
		Email: faker.Email(),
		HIN:   faker.UUIDDigit(),
	}

	if err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&s.Hospital).Error; err != nil {
			return err
		}
		s.Doctor.HospitalID = s.Hospital.ID
		s.Nurse.HospitalID = s.Hospital.ID
		s.Patient.HospitalID = s.Hospital.ID
		if err := tx.Create(&s.Doctor).Error; err != nil {
			return err
		}
		if err := tx.Create(&s.Nurse).Error; err != nil {
			return err
		}
		if err := tx.Create(&s.Patient).Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		log.Fatalf("Could not seed records due to error: %s\n", err.Error())
	}

	token, err := utils.GenerateJWT(s.Doctor.Email, s.Doctor.ID, s.Doctor.HospitalID, s.Doctor.Role, nil)
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
		return
	}
	s.Token = &token
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func (s *TestSuite) newRouter() *gin.Engine {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	wardHandlers(apiv1)
	admissionHandlers(apiv1)
	appointmentHandlers(apiv1)
	handoverHandlers(apiv1)
	return router
}

func (s *TestSuite) authedRequest(method, url string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.Nil(s.T(), err)
		reader = strings.NewReader(string(b))
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *s.Token))
	w := httptest.NewRecorder()
	s.newRouter().ServeHTTP(w, req)
	return w
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthRoutes() {
	router := setupRouter()
	guestAuthRoutes(router)

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"email": s.Doctor.Email,
	}
	sbody, _ := json.Marshal(&jbody)
	loginReq, _ := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, loginReq)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	token := gjson.Get(string(rbytes), "token").String()
	assert.NotEmpty(s.T(), token)

	w = httptest.NewRecorder()
	jbody["email"] = "nobody@example.com"
	sbody, _ = json.Marshal(&jbody)
	loginReq, _ = http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, loginReq)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestUnauthorizedWithoutToken() {
	router := s.newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/wards", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 401, w.Code)
}

func (s *TestSuite) TestWards() {
	s.Run("Should create a Ward with its beds", func() {
		w := s.authedRequest("POST", "/api/v1/wards", types.CreateWardRequestBody{
			Name:      "ICU",
			TotalBeds: 2,
		})
		assert.Equal(s.T(), 201, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(rbytes)
		wardId := gjson.Get(sjson, "data.id").Uint()
		assert.Greater(s.T(), wardId, uint64(0))

		w = s.authedRequest("GET", fmt.Sprintf("/api/v1/wards/%d/beds", wardId), nil)
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ = io.ReadAll(w.Body)
		beds := gjson.Get(string(rbytes), "data").Array()
		assert.Len(s.T(), beds, 2)
	})

	s.Run("Should return a 400 error response", func() {
		w := s.authedRequest("POST", "/api/v1/wards", map[string]any{
			"name": "No Beds",
		})
		assert.Equal(s.T(), 400, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(rbytes), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("Should return list of Wards with 200 status", func() {
		w := s.authedRequest("GET", "/api/v1/wards", nil)
		assert.Equal(s.T(), 200, w.Code)
	})
}

func (s *TestSuite) TestAdmissionFlow() {
	w := s.authedRequest("POST", "/api/v1/wards", types.CreateWardRequestBody{
		Name:      "Recovery",
		TotalBeds: 2,
	})
	assert.Equal(s.T(), 201, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	wardId := uint(gjson.Get(string(rbytes), "data.id").Uint())

	w = s.authedRequest("GET", fmt.Sprintf("/api/v1/wards/%d/beds", wardId), nil)
	rbytes, _ = io.ReadAll(w.Body)
	bedId := uint(gjson.Get(string(rbytes), "data.0.id").Uint())

	w = s.authedRequest("POST", "/api/v1/admissions", types.RequestAdmissionRequestBody{
		PatientID: s.Patient.ID,
		WardID:    wardId,
		BedID:     bedId,
	})
	assert.Equal(s.T(), 201, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	admissionId := gjson.Get(string(rbytes), "data.id").Uint()
	assert.Equal(s.T(), "pending", gjson.Get(string(rbytes), "data.status").String())

	s.Run("Conflicting request for the same bed returns 409", func() {
		w := s.authedRequest("POST", "/api/v1/admissions", types.RequestAdmissionRequestBody{
			PatientID: s.Patient.ID,
			WardID:    wardId,
			BedID:     bedId,
		})
		assert.Equal(s.T(), 409, w.Code)
	})

	s.Run("Pending queue lists the admission", func() {
		w := s.authedRequest("GET", "/api/v1/admissions", nil)
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		ids := gjson.Get(string(rbytes), "data.#.id").Array()
		found := false
		for _, id := range ids {
			if id.Uint() == admissionId {
				found = true
			}
		}
		assert.True(s.T(), found)
	})

	s.Run("Confirm then discharge", func() {
		w := s.authedRequest("PUT", fmt.Sprintf("/api/v1/admissions/%d/confirm", admissionId), nil)
		assert.Equal(s.T(), 200, w.Code)

		w = s.authedRequest("GET", fmt.Sprintf("/api/v1/admissions/%d", admissionId), nil)
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "active", gjson.Get(string(rbytes), "data.status").String())

		w = s.authedRequest("PUT", fmt.Sprintf("/api/v1/admissions/%d/discharge", admissionId), types.DischargeRequestBody{
			Summary: "recovered",
		})
		assert.Equal(s.T(), 200, w.Code)

		w = s.authedRequest("GET", fmt.Sprintf("/api/v1/patients/%d/admissions", s.Patient.ID), nil)
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ = io.ReadAll(w.Body)
		assert.Equal(s.T(), "discharged", gjson.Get(string(rbytes), "data.0.status").String())
	})

	s.Run("Unknown admission returns 404", func() {
		w := s.authedRequest("GET", "/api/v1/admissions/99999", nil)
		assert.Equal(s.T(), 404, w.Code)
	})
}

func (s *TestSuite) TestAppointments() {
	s.Run("Rejects a scheduled time in the past", func() {
		w := s.authedRequest("POST", "/api/v1/appointments", map[string]any{
			"patient":        s.Patient.ID,
			"staff":          s.Nurse.ID,
			"scheduled_time": "2000-01-01 10:00:00 +00:00",
		})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Rejects a booking without an assigned staff member", func() {
		w := s.authedRequest("POST", "/api/v1/appointments", map[string]any{
			"patient":        s.Patient.ID,
			"scheduled_time": "2100-01-01 10:00:00 +00:00",
		})
		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Books, assigns and completes", func() {
		w := s.authedRequest("POST", "/api/v1/appointments", map[string]any{
			"patient":        s.Patient.ID,
			"staff":          s.Nurse.ID,
			"scheduled_time": "2100-01-01 10:00:00 +00:00",
		})
		assert.Equal(s.T(), 201, w.Code)
		rbytes, _ := io.ReadAll(w.Body)
		appointmentId := gjson.Get(string(rbytes), "data.id").Uint()
		assert.Equal(s.T(), uint64(s.Nurse.ID), gjson.Get(string(rbytes), "data.staff_id").Uint())

		w = s.authedRequest("PUT", fmt.Sprintf("/api/v1/appointments/%d/assign", appointmentId), types.AssignAppointmentRequestBody{
			StaffID: s.Nurse.ID,
		})
		assert.Equal(s.T(), 409, w.Code)

		w = s.authedRequest("PUT", fmt.Sprintf("/api/v1/appointments/%d/assign", appointmentId), types.AssignAppointmentRequestBody{
			StaffID: s.Doctor.ID,
		})
		assert.Equal(s.T(), 200, w.Code)

		w = s.authedRequest("PUT", fmt.Sprintf("/api/v1/appointments/%d/complete", appointmentId), nil)
		assert.Equal(s.T(), 200, w.Code)

		w = s.authedRequest("POST", "/api/v1/appointments", map[string]any{
			"patient":        s.Patient.ID,
			"staff":          s.Doctor.ID,
			"scheduled_time": "2100-02-01 10:00:00 +00:00",
		})
		assert.Equal(s.T(), 201, w.Code)
		rbytes, _ = io.ReadAll(w.Body)
		followupId := gjson.Get(string(rbytes), "data.id").Uint()

		w = s.authedRequest("GET", fmt.Sprintf("/api/v1/appointments/%d/last-visited", followupId), nil)
		assert.Equal(s.T(), 200, w.Code)
		rbytes, _ = io.ReadAll(w.Body)
		assert.Equal(s.T(), appointmentId, gjson.Get(string(rbytes), "data.id").Uint())
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
