package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room statuses. Transitions are one-way: waiting -> active -> finished.
const (
	RoomWaiting  = "waiting"
	RoomActive   = "active"
	RoomFinished = "finished"
)

type Room struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;size:6;not null" json:"code"`
	Name       string    `json:"name"`
	HostID     string    `gorm:"index;not null" json:"host_id"`
	EntryFee   float64   `gorm:"not null" json:"entry_fee"`
	RoundCount int       `gorm:"not null" json:"round_count"`
	Status     string    `gorm:"index;not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
