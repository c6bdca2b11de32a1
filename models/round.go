package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Round statuses. A round becomes finished exactly once, by the first valid
// win or by draw exhaustion.
const (
	RoundStatusActive   = "active"
	RoundStatusFinished = "finished"
)

type Round struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	RoomID       string   `gorm:"index;not null" json:"room_id"`
	Number       int      `gorm:"not null" json:"number"`
	Status       string   `gorm:"index;not null" json:"status"`
	DrawnNumbers IntList  `json:"drawn_numbers"`
	WinnerID     *string  `json:"winner_id,omitempty"`
	Prize        *float64 `json:"prize,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
