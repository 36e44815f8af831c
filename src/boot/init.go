package boot

import (
	"context"
	"fmt"
	"hms/src/common"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/types"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
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

	return db
}

// InitScheduler starts the background jobs: appointment reminders and the
// periodic occupancy snapshot.
func InitScheduler(notify common.Notifier) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	_, err = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(SendAppointmentReminders, notify),
	)
	if err != nil {
		log.Printf("Error scheduling reminder job: %s\n", err.Error())
		return
	}
	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(SnapshotOccupancy),
	)
	if err != nil {
		log.Printf("Error scheduling occupancy snapshot job: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// SendAppointmentReminders mails patients whose confirmed appointment falls
// within the next 24 hours. A redis SETNX per appointment keeps a reminder
// from going out twice across job runs and instances.
func SendAppointmentReminders(notify common.Notifier) {
	conn := db.GetDb()
	rd := lib.GetRedisClient()
	now := time.Now()
	var appointments []models.Appointment
	err := conn.
		Model(&models.Appointment{}).
		Where("status = ?", types.APPOINTMENT_CONFIRMED).
		Where("scheduled_time BETWEEN ? AND ?", now, now.Add(24*time.Hour)).
		Preload("Patient").
		Find(&appointments).
		Error
	if err != nil {
		log.Printf("Error retrieving upcoming appointments: %s\n", err.Error())
		return
	}
	for _, appointment := range appointments {
		if appointment.Patient.Email == "" {
			continue
		}
		key := fmt.Sprintf("appointment:%d:reminded", appointment.ID)
		ok, err := rd.SetNX(context.Background(), key, 1, 48*time.Hour).Result()
		if err != nil {
			log.Printf("Error marking reminder for appointment %d: %s\n", appointment.ID, err.Error())
			continue
		}
		if !ok {
			continue
		}
		notify.Send(appointment.Patient.Email, "Appointment reminder",
			fmt.Sprintf("You have an appointment on %s.", appointment.ScheduledTime.Format(time.RFC1123)))
	}
}

// SnapshotOccupancy logs per-ward bed counts by status.
func SnapshotOccupancy() {
	conn := db.GetDb()
	var rows []struct {
		WardID uint
		Status types.BedStatus
		Total  int64
	}
	err := conn.
		Model(&models.Bed{}).
		Select("ward_id", "status", "count(*) as total").
		Group("ward_id").
		Group("status").
		Find(&rows).
		Error
	if err != nil {
		log.Printf("Error computing occupancy snapshot: %s\n", err.Error())
		return
	}
	for _, row := range rows {
		log.Printf("occupancy ward=%d status=%s beds=%d\n", row.WardID, row.Status, row.Total)
	}
}
