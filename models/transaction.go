package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionEntryFee TransactionType = "entry_fee"
	TransactionPrize    TransactionType = "prize"
	TransactionCredit   TransactionType = "credit"
	TransactionDebit    TransactionType = "debit"
)

// Transaction is the balance ledger: one row per escrow debit, prize credit
// or external credit/debit, with the balance after the mutation.
type Transaction struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	UserID       string          `gorm:"index;not null" json:"user_id"`
	Type         TransactionType `gorm:"not null" json:"type"`
	Amount       float64         `gorm:"not null" json:"amount"`
	BalanceAfter float64         `json:"balance_after"`
	Metadata     datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
