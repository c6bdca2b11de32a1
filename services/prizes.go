package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/game"
	"github.com/bingo-live/backend/models"
	"github.com/bingo-live/backend/utils/logger"
)

// houseCut is the platform's share of the pot; the winner takes the rest.
const houseCut = 0.10

// SettleResult is the structured outcome of a bingo claim.
type SettleResult struct {
	IsWinner       bool         `json:"is_winner"`
	AlreadyDecided bool         `json:"already_decided,omitempty"`
	Pattern        game.Pattern `json:"pattern,omitempty"`
	Prize          float64      `json:"prize,omitempty"`
	WinnerID       string       `json:"winner_id,omitempty"`
}

// PrizeLedger validates claims against the authoritative drawn sequence and
// disburses the pot exactly once per round.
type PrizeLedger struct {
	rooms  RoomStore
	rounds RoundStore
	cards  CardStore
	coord  *RoundCoordinator
	hub    *Hub
}

func NewPrizeLedger(rooms RoomStore, rounds RoundStore, cards CardStore, coord *RoundCoordinator, hub *Hub) *PrizeLedger {
	return &PrizeLedger{rooms: rooms, rounds: rounds, cards: cards, coord: coord, hub: hub}
}

// Settle re-validates a bingo claim. Client-side marks are never trusted:
// the pattern is re-evaluated against the server-side drawn sequence. On a
// valid claim the round is finished, the winner credited and the
// participant's winnings incremented as one unit; a concurrent claim that
// lost the race observes an already-decided result and no second payout.
//
// The prize is the whole pot for the round: entry fee times participant
// count, minus the 10% house cut.
func (l *PrizeLedger) Settle(ctx context.Context, userID, roundID, cardID string, claimed game.Pattern) (*SettleResult, error) {
	card, err := l.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.RoundID != roundID {
		return nil, fmt.Errorf("%w: card does not belong to this round", apperr.ErrValidation)
	}

	participant, err := l.rooms.GetParticipant(ctx, card.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.UserID != userID {
		return nil, fmt.Errorf("%w: card belongs to another player", apperr.ErrUnauthorized)
	}

	room, err := l.rooms.GetRoom(ctx, participant.RoomID)
	if err != nil {
		return nil, err
	}

	result, err := l.settleLocked(ctx, room, participant, card, roundID, claimed)
	if err != nil {
		return nil, err
	}

	l.hub.Publish(room.Code, Event{
		Type: EventBingoConfirmed,
		Data: map[string]interface{}{
			"user_id":  userID,
			"is_valid": result.IsWinner,
			"pattern":  string(result.Pattern),
			"prize":    result.Prize,
		},
	})

	if result.IsWinner {
		l.hub.Publish(room.Code, Event{
			Type: EventRoundComplete,
			Data: map[string]interface{}{"winner_id": userID},
		})
		if err := l.coord.AdvanceOrFinish(ctx, room.ID); err != nil {
			logger.Errorf("[Room %s] advance after win: %v", room.Code, err)
		}
	}
	return result, nil
}

func (l *PrizeLedger) settleLocked(ctx context.Context, room *models.Room, participant *models.Participant, card *models.Card, roundID string, claimed game.Pattern) (*SettleResult, error) {
	lock := l.coord.locks.get(room.ID)
	lock.Lock()
	defer lock.Unlock()

	round, err := l.rounds.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != models.RoundStatusActive {
		return &SettleResult{AlreadyDecided: true}, nil
	}

	win, pattern := game.CheckPattern(card.Numbers, round.DrawnNumbers, claimed)
	if !win {
		// No side effect for a failed claim.
		return &SettleResult{}, nil
	}

	participants, err := l.rooms.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	prize := room.EntryFee * float64(len(participants)) * (1 - houseCut)

	_, err = l.rounds.SettleWin(ctx, SettleParams{
		RoundID:       roundID,
		CardID:        card.ID,
		ParticipantID: participant.ID,
		WinnerUserID:  participant.UserID,
		Prize:         prize,
		Pattern:       string(pattern),
	})
	if errors.Is(err, apperr.ErrAlreadyDecided) {
		return &SettleResult{AlreadyDecided: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settle round %s: %w", roundID, err)
	}

	l.coord.StopDraws(roundID)
	logger.Infof("[Room %s] round %d won by %s (%s, prize %.2f)", room.Code, round.Number, participant.UserID, pattern, prize)

	return &SettleResult{
		IsWinner: true,
		Pattern:  pattern,
		Prize:    prize,
		WinnerID: participant.UserID,
	}, nil
}
