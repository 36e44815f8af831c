package mailer

import (
	"hms/src/lib"
	"hms/src/models"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SMTPNotifier queues a notification row and delivers it over SMTP in the
// background. Delivery failures leave the row in queued state for inspection.
type SMTPNotifier struct {
	DB *gorm.DB
}

func (n *SMTPNotifier) Send(recipient, subject, body string) {
	notification := models.Notification{
		ID:        uuid.New(),
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
	}
	if err := n.DB.Create(&notification).Error; err != nil {
		log.Printf("Error queueing notification for %s: %s\n", recipient, err.Error())
		return
	}
	go n.deliver(notification)
}

func (n *SMTPNotifier) deliver(notification models.Notification) {
	err := lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
		To:       []string{notification.Recipient},
		Subject:  notification.Subject,
		Body:     notification.Body,
	})
	if err != nil {
		log.Printf("Error sending notification %s: %s\n", notification.ID.String(), err.Error())
		return
	}
	n.DB.Model(&models.Notification{}).
		Where("id = ?", notification.ID).
		Update("status", "sent")
}
