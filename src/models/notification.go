package models

import (
	"hms/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `gorm:"default:'queued'" json:"status,omitempty"`

	types.Timestamps
}
