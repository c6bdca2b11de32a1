package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card is a participant's 25-cell grid for one round. Numbers are fixed at
// creation; Marked only ever grows as numbers are drawn.
type Card struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	ParticipantID string    `gorm:"index;not null" json:"participant_id"`
	RoundID       string    `gorm:"index;not null" json:"round_id"`
	Numbers       IntList   `json:"numbers"`
	Marked        IntList   `json:"marked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
