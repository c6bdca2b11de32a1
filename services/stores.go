package services

import (
	"context"

	"github.com/bingo-live/backend/models"
)

// The engine consumes persistence and the account subsystem through these
// narrow interfaces. Methods that must commit as a unit (fee escrow,
// settlement) are single calls so implementations can wrap them in one
// database transaction.

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)

	// CreditBalance adds amount to the user's balance and records a ledger
	// row. Amount must be positive.
	CreditBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error)

	// DebitBalance subtracts amount, failing with ErrInsufficientBalance
	// when the balance cannot cover it. The balance never goes negative.
	DebitBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error)
}

type RoomStore interface {
	// CreateRoomWithHost persists the room and seats the host as its first
	// participant in one unit.
	CreateRoomWithHost(ctx context.Context, room *models.Room) (*models.Participant, error)

	GetRoom(ctx context.Context, id string) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	CodeExists(ctx context.Context, code string) (bool, error)

	// UpdateRoomStatus transitions from -> to conditionally; ErrState when
	// the room is no longer in the from status.
	UpdateRoomStatus(ctx context.Context, roomID, from, to string) error

	// AddParticipant debits the entry fee and seats the user as one unit,
	// conditional on the room still being in the waiting status (ErrState
	// otherwise). Fails with ErrAlreadyMember or ErrInsufficientBalance,
	// leaving the balance untouched.
	AddParticipant(ctx context.Context, userID, roomID string, entryFee float64) (*models.Participant, error)

	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error)
}

// SettleParams is the unit of work for a winning settlement: finish the
// round, credit the winner, bump participant winnings and write the ledger
// row together.
type SettleParams struct {
	RoundID       string
	CardID        string
	ParticipantID string
	WinnerUserID  string
	Prize         float64
	Pattern       string
}

type RoundStore interface {
	CreateRound(ctx context.Context, round *models.Round) error
	GetRound(ctx context.Context, id string) (*models.Round, error)
	GetActiveRound(ctx context.Context, roomID string) (*models.Round, error)
	CountFinishedRounds(ctx context.Context, roomID string) (int, error)

	// AppendDrawnNumber persists the updated sequence, conditional on the
	// round still being active (ErrState otherwise).
	AppendDrawnNumber(ctx context.Context, roundID string, seq models.IntList) error

	// FinishRound marks the round finished without a payout (draw
	// exhaustion). ErrAlreadyDecided when it is already finished.
	FinishRound(ctx context.Context, roundID string) error

	// SettleWin atomically finishes the round with winner and prize,
	// credits the winner and increments participant winnings. A concurrent
	// settle that lost the race gets ErrAlreadyDecided and no money moves.
	SettleWin(ctx context.Context, p SettleParams) (*models.User, error)
}

type CardStore interface {
	CreateCards(ctx context.Context, cards []models.Card) error
	GetCard(ctx context.Context, id string) (*models.Card, error)
	ListRoundCards(ctx context.Context, roundID string) ([]models.Card, error)
	ListParticipantCards(ctx context.Context, participantID, roundID string) ([]models.Card, error)

	// MarkNumber appends n to the marked set of every card in the round
	// whose numbers include it.
	MarkNumber(ctx context.Context, roundID string, n int) error
}
