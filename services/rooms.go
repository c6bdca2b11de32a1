package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/models"
	"github.com/bingo-live/backend/utils/logger"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6

	// Collisions on a 36^6 space are negligible but still checked.
	roomCodeMaxAttempts = 20
)

// RoomRegistry creates rooms, issues join codes and admits members with fee
// escrow.
type RoomRegistry struct {
	users  UserStore
	rooms  RoomStore
	rounds RoundStore
	cards  CardStore
}

func NewRoomRegistry(users UserStore, rooms RoomStore, rounds RoundStore, cards CardStore) *RoomRegistry {
	return &RoomRegistry{users: users, rooms: rooms, rounds: rounds, cards: cards}
}

// CreateRoom creates a room with a fresh unique code and seats the host as
// its first participant. The host pays no entry fee; escrow happens on join.
func (s *RoomRegistry) CreateRoom(ctx context.Context, hostID, name string, entryFee float64, roundCount int) (*models.Room, error) {
	if roundCount < 1 {
		return nil, fmt.Errorf("%w: round count must be at least 1", apperr.ErrValidation)
	}
	if entryFee < 0 {
		return nil, fmt.Errorf("%w: entry fee cannot be negative", apperr.ErrValidation)
	}

	if _, err := s.users.GetUser(ctx, hostID); err != nil {
		return nil, fmt.Errorf("host lookup: %w", err)
	}

	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		Code:       code,
		Name:       name,
		HostID:     hostID,
		EntryFee:   entryFee,
		RoundCount: roundCount,
		Status:     models.RoomWaiting,
	}
	if _, err := s.rooms.CreateRoomWithHost(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	logger.Infof("[Room %s] created by host %s (fee=%.2f rounds=%d)", room.Code, hostID, entryFee, roundCount)
	return room, nil
}

// JoinRoom admits a user to a waiting room, debiting the entry fee and
// seating them as one atomic unit. The status check here is a fast path;
// the store re-checks it inside the escrow transaction. The user-joined
// announcement happens when the member's socket connects.
func (s *RoomRegistry) JoinRoom(ctx context.Context, userID, code string) (*models.Room, *models.Participant, error) {
	room, err := s.rooms.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if room.Status != models.RoomWaiting {
		return nil, nil, fmt.Errorf("%w: room is %s", apperr.ErrState, room.Status)
	}

	participant, err := s.rooms.AddParticipant(ctx, userID, room.ID, room.EntryFee)
	if err != nil {
		return nil, nil, err
	}

	logger.Infof("[Room %s] user %s joined", room.Code, userID)
	return room, participant, nil
}

// RoomSnapshot is the authoritative state clients re-fetch to reconcile
// after reconnect, instead of trusting accumulated push events.
type RoomSnapshot struct {
	Room         *models.Room         `json:"room"`
	Participants []models.Participant `json:"participants"`
	CurrentRound *models.Round        `json:"current_round,omitempty"`
	Cards        []models.Card        `json:"cards,omitempty"`
}

// Snapshot returns the room, its participants, the active round when one
// exists and, when userID is seated, that user's cards for the round.
func (s *RoomRegistry) Snapshot(ctx context.Context, roomID, userID string) (*RoomSnapshot, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	participants, err := s.rooms.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}

	snap := &RoomSnapshot{Room: room, Participants: participants}

	round, err := s.rounds.GetActiveRound(ctx, roomID)
	if errors.Is(err, apperr.ErrNotFound) {
		// No active round between rounds or before start.
		return snap, nil
	}
	if err != nil {
		return nil, err
	}
	snap.CurrentRound = round

	for _, p := range participants {
		if p.UserID == userID {
			if ownCards, err := s.cards.ListParticipantCards(ctx, p.ID, round.ID); err == nil {
				snap.Cards = ownCards
			}
			break
		}
	}
	return snap, nil
}

func (s *RoomRegistry) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < roomCodeMaxAttempts; attempt++ {
		buf := make([]byte, roomCodeLength)
		for i := range buf {
			buf[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		code := string(buf)

		exists, err := s.rooms.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("code lookup: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique room code after %d attempts", roomCodeMaxAttempts)
}
