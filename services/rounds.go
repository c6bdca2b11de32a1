package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/game"
	"github.com/bingo-live/backend/models"
	"github.com/bingo-live/backend/utils/logger"
)

// RoundCoordinator owns round status, draw sequencing and room advancement.
// All round mutations for a room run under that room's lock; the store's
// conditional updates are the backstop.
type RoundCoordinator struct {
	rooms  RoomStore
	rounds RoundStore
	cards  CardStore
	hub    *Hub
	locks  *lockTable
	sched  *drawScheduler
}

func NewRoundCoordinator(rooms RoomStore, rounds RoundStore, cards CardStore, hub *Hub, drawInterval time.Duration) *RoundCoordinator {
	c := &RoundCoordinator{
		rooms:  rooms,
		rounds: rounds,
		cards:  cards,
		hub:    hub,
		locks:  newLockTable(),
	}
	c.sched = newDrawScheduler(c, drawInterval)
	return c
}

// StartGame opens round 1 of a waiting room, issues one card per
// participant and transitions the room to active. Host only.
func (c *RoundCoordinator) StartGame(ctx context.Context, roomID, callerID string) (*models.Round, error) {
	lock := c.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(room, callerID); err != nil {
		return nil, err
	}
	if room.Status != models.RoomWaiting {
		return nil, fmt.Errorf("%w: room is %s", apperr.ErrState, room.Status)
	}

	participants, err := c.rooms.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(participants) < 1 {
		return nil, fmt.Errorf("%w: at least one participant is required", apperr.ErrState)
	}

	if err := c.rooms.UpdateRoomStatus(ctx, roomID, models.RoomWaiting, models.RoomActive); err != nil {
		return nil, err
	}

	round, err := c.openRound(ctx, room, 1, participants)
	if err != nil {
		// Revert so the start stays all-or-nothing and can be retried.
		if rbErr := c.rooms.UpdateRoomStatus(ctx, roomID, models.RoomActive, models.RoomWaiting); rbErr != nil {
			logger.Errorf("[Room %s] revert to waiting after failed start: %v", room.Code, rbErr)
		}
		return nil, err
	}

	logger.Infof("[Room %s] game started, round 1 open", room.Code)
	c.hub.Publish(room.Code, Event{Type: EventGameStarted})
	return round, nil
}

// DrawNumber draws one not-yet-drawn number for the round, persists it,
// marks it on every card that carries it and announces it. callerID must be
// the room's host; the server-owned draw loop passes its own authority.
func (c *RoundCoordinator) DrawNumber(ctx context.Context, roundID, callerID string) (int, models.IntList, error) {
	round, err := c.rounds.GetRound(ctx, roundID)
	if err != nil {
		return 0, nil, err
	}
	room, err := c.rooms.GetRoom(ctx, round.RoomID)
	if err != nil {
		return 0, nil, err
	}
	if callerID != serverAuthority {
		if err := requireHost(room, callerID); err != nil {
			return 0, nil, err
		}
	}

	lock := c.locks.get(room.ID)
	lock.Lock()
	defer lock.Unlock()

	return c.drawLocked(ctx, room, roundID)
}

// drawLocked assumes the room lock is held.
func (c *RoundCoordinator) drawLocked(ctx context.Context, room *models.Room, roundID string) (int, models.IntList, error) {
	round, err := c.rounds.GetRound(ctx, roundID)
	if err != nil {
		return 0, nil, err
	}
	if round.Status != models.RoundStatusActive {
		return 0, nil, fmt.Errorf("%w: round is %s", apperr.ErrState, round.Status)
	}
	if len(round.DrawnNumbers) >= game.MaxNumber {
		return 0, nil, apperr.ErrDrawExhausted
	}

	n, ok := game.DrawFrom(round.DrawnNumbers)
	if !ok {
		return 0, nil, apperr.ErrDrawExhausted
	}

	seq := append(round.DrawnNumbers.Copy(), n)
	if err := c.rounds.AppendDrawnNumber(ctx, roundID, seq); err != nil {
		return 0, nil, err
	}
	if err := c.cards.MarkNumber(ctx, roundID, n); err != nil {
		// The draw is committed; card marks are derivable from the drawn
		// sequence, so log and continue.
		logger.Errorf("[Room %s] mark %d on round %s cards: %v", room.Code, n, roundID, err)
	}

	c.hub.Publish(room.Code, Event{
		Type: EventNewNumber,
		Data: map[string]interface{}{"number": n, "drawn_numbers": []int(seq)},
	})
	return n, seq, nil
}

// AdvanceOrFinish opens the next round with fresh cards, or marks the room
// finished when all rounds have been played. Called after a round is
// decided.
func (c *RoundCoordinator) AdvanceOrFinish(ctx context.Context, roomID string) error {
	lock := c.locks.get(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status != models.RoomActive {
		return nil
	}

	finished, err := c.rounds.CountFinishedRounds(ctx, roomID)
	if err != nil {
		return err
	}

	if finished < room.RoundCount {
		participants, err := c.rooms.ListParticipants(ctx, roomID)
		if err != nil {
			return err
		}
		round, err := c.openRound(ctx, room, finished+1, participants)
		if err != nil {
			return err
		}
		logger.Infof("[Room %s] round %d open", room.Code, round.Number)
		return nil
	}

	if err := c.rooms.UpdateRoomStatus(ctx, roomID, models.RoomActive, models.RoomFinished); err != nil {
		return err
	}
	logger.Infof("[Room %s] game finished after %d rounds", room.Code, finished)
	c.hub.Publish(room.Code, Event{Type: EventGameComplete})
	return nil
}

// openRound creates the round, deals one card per participant and schedules
// the server-owned draw loop. Caller holds the room lock.
func (c *RoundCoordinator) openRound(ctx context.Context, room *models.Room, number int, participants []models.Participant) (*models.Round, error) {
	if number > room.RoundCount {
		return nil, fmt.Errorf("%w: room plays only %d rounds", apperr.ErrState, room.RoundCount)
	}

	round := &models.Round{
		RoomID:       room.ID,
		Number:       number,
		Status:       models.RoundStatusActive,
		DrawnNumbers: models.IntList{},
	}
	if err := c.rounds.CreateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("create round: %w", err)
	}

	cards := make([]models.Card, 0, len(participants))
	for _, p := range participants {
		cards = append(cards, models.Card{
			ParticipantID: p.ID,
			RoundID:       round.ID,
			Numbers:       models.IntList(game.GenerateCard()),
			Marked:        models.IntList{game.FreeCell},
		})
	}
	if err := c.cards.CreateCards(ctx, cards); err != nil {
		return nil, fmt.Errorf("deal cards: %w", err)
	}

	c.sched.start(round.ID, room.ID)
	return round, nil
}

// serverDraw is one tick of the draw loop. It reports whether the loop
// should stop. Transient failures are swallowed; the loop retries on its
// next tick.
func (c *RoundCoordinator) serverDraw(ctx context.Context, roundID, roomID string) bool {
	lock := c.locks.get(roomID)
	lock.Lock()

	room, err := c.rooms.GetRoom(ctx, roomID)
	if err != nil {
		lock.Unlock()
		logger.Warnf("[DrawLoop] room %s lookup: %v", roomID, err)
		return errors.Is(err, apperr.ErrNotFound)
	}

	_, _, err = c.drawLocked(ctx, room, roundID)
	lock.Unlock()

	switch {
	case err == nil:
		return false
	case errors.Is(err, apperr.ErrDrawExhausted):
		c.finishByExhaustion(ctx, room, roundID)
		return true
	case errors.Is(err, apperr.ErrState):
		// Round was decided by a winning claim.
		return true
	default:
		logger.Warnf("[DrawLoop] round %s draw failed, retrying next tick: %v", roundID, err)
		return false
	}
}

// finishByExhaustion closes a round on which all 75 numbers were drawn
// without a valid win, then advances the room.
func (c *RoundCoordinator) finishByExhaustion(ctx context.Context, room *models.Room, roundID string) {
	lock := c.locks.get(room.ID)
	lock.Lock()
	err := c.rounds.FinishRound(ctx, roundID)
	lock.Unlock()

	if err != nil {
		if !errors.Is(err, apperr.ErrAlreadyDecided) {
			logger.Errorf("[Room %s] finish exhausted round %s: %v", room.Code, roundID, err)
		}
		return
	}

	logger.Infof("[Room %s] round %s exhausted with no winner", room.Code, roundID)
	c.hub.Publish(room.Code, Event{
		Type: EventRoundComplete,
		Data: map[string]interface{}{"winner_id": ""},
	})
	if err := c.AdvanceOrFinish(ctx, room.ID); err != nil {
		logger.Errorf("[Room %s] advance after exhaustion: %v", room.Code, err)
	}
}

// StopDraws cancels the draw loop for a round, if one is running.
func (c *RoundCoordinator) StopDraws(roundID string) {
	c.sched.stop(roundID)
}

// Shutdown cancels every running draw loop.
func (c *RoundCoordinator) Shutdown() {
	c.sched.stopAll()
}

func requireHost(room *models.Room, callerID string) error {
	if room.HostID != callerID {
		return fmt.Errorf("%w: only the host may do this", apperr.ErrUnauthorized)
	}
	return nil
}
