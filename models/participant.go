package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is a user seated in a room. Created on join after the entry fee
// is escrowed; never deleted while the game is running.
type Participant struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"uniqueIndex:idx_participants_room_user;not null" json:"user_id"`
	RoomID    string    `gorm:"uniqueIndex:idx_participants_room_user;not null" json:"room_id"`
	Winnings  float64   `gorm:"not null;default:0" json:"winnings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
