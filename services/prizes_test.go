package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/game"
	"github.com/bingo-live/backend/models"
)

// plantCard seats a known card for the participant so claims can be made
// deterministic. Row 0 is 1, 16, 31, 46, 61.
func plantCard(t *testing.T, store *fakeStore, participantID, roundID string) *models.Card {
	t.Helper()
	card := models.Card{
		ParticipantID: participantID,
		RoundID:       roundID,
		Numbers: models.IntList{
			1, 16, 31, 46, 61,
			2, 17, 32, 47, 62,
			3, 18, 0, 48, 63,
			4, 19, 33, 49, 64,
			5, 20, 34, 50, 65,
		},
		Marked: models.IntList{game.FreeCell},
	}
	cards := []models.Card{card}
	if err := store.CreateCards(context.Background(), cards); err != nil {
		t.Fatalf("CreateCards failed: %v", err)
	}
	return &cards[0]
}

func TestSettleWholePotScenario(t *testing.T) {
	store, _, registry, coord, ledger := newTestEngine(t)
	ctx := context.Background()

	host := store.addUser("host", 100)
	winner := store.addUser("winner", 100)
	other := store.addUser("other", 100)

	room, err := registry.CreateRoom(ctx, host.ID, "room", 10, 1)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	_, winnerSeat, err := registry.JoinRoom(ctx, winner.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if _, _, err := registry.JoinRoom(ctx, other.ID, room.Code); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	round, err := coord.StartGame(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	card := plantCard(t, store, winnerSeat.ID, round.ID)
	if err := store.AppendDrawnNumber(ctx, round.ID, models.IntList{1, 16, 31, 46, 61}); err != nil {
		t.Fatalf("AppendDrawnNumber failed: %v", err)
	}

	result, err := ledger.Settle(ctx, winner.ID, round.ID, card.ID, game.PatternRow)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !result.IsWinner || result.Pattern != game.PatternRow {
		t.Fatalf("claim not honored: %+v", result)
	}

	// Fee 10, 3 participants, 10 percent house cut: prize 27.
	if result.Prize != 27 {
		t.Fatalf("prize %.2f, want 27", result.Prize)
	}
	u, _ := store.GetUser(ctx, winner.ID)
	if u.Balance != 117 {
		t.Fatalf("winner balance %.2f, want 100 - 10 fee + 27 prize = 117", u.Balance)
	}

	got, _ := store.GetRound(ctx, round.ID)
	if got.Status != models.RoundStatusFinished || got.WinnerID == nil || *got.WinnerID != winner.ID {
		t.Fatalf("round not settled to the winner: %+v", got)
	}
	if got.Prize == nil || *got.Prize != 27 {
		t.Fatal("round prize not recorded")
	}

	// Single round, so the win ends the game.
	r, _ := store.GetRoom(ctx, room.ID)
	if r.Status != models.RoomFinished {
		t.Fatalf("room status %q after final round, want %q", r.Status, models.RoomFinished)
	}
}

func TestSettleAdvancesToNextRound(t *testing.T) {
	store, _, registry, coord, ledger := newTestEngine(t)
	ctx := context.Background()

	host := store.addUser("host", 100)
	player := store.addUser("player", 100)

	room, err := registry.CreateRoom(ctx, host.ID, "room", 10, 2)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	_, seat, err := registry.JoinRoom(ctx, player.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	round, err := coord.StartGame(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	card := plantCard(t, store, seat.ID, round.ID)
	if err := store.AppendDrawnNumber(ctx, round.ID, models.IntList{1, 16, 31, 46, 61}); err != nil {
		t.Fatalf("AppendDrawnNumber failed: %v", err)
	}
	result, err := ledger.Settle(ctx, player.ID, round.ID, card.ID, game.PatternRow)
	if err != nil || !result.IsWinner {
		t.Fatalf("Settle failed: %+v %v", result, err)
	}

	next, err := store.GetActiveRound(ctx, room.ID)
	if err != nil {
		t.Fatalf("no active round after win with rounds remaining: %v", err)
	}
	if next.Number != 2 || len(next.DrawnNumbers) != 0 {
		t.Fatalf("next round = number %d with %d draws, want a fresh round 2", next.Number, len(next.DrawnNumbers))
	}

	cards, _ := store.ListRoundCards(ctx, next.ID)
	if len(cards) != 2 {
		t.Fatalf("round 2 dealt %d cards, want 2", len(cards))
	}
}

func TestSettleRejectsInvalidClaims(t *testing.T) {
	store, _, registry, coord, ledger := newTestEngine(t)
	ctx := context.Background()

	host := store.addUser("host", 100)
	player := store.addUser("player", 100)

	room, err := registry.CreateRoom(ctx, host.ID, "room", 10, 1)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	_, seat, err := registry.JoinRoom(ctx, player.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	round, err := coord.StartGame(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	card := plantCard(t, store, seat.ID, round.ID)

	// Nothing drawn yet: the claim fails but leaves no trace.
	result, err := ledger.Settle(ctx, player.ID, round.ID, card.ID, game.PatternRow)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if result.IsWinner || result.AlreadyDecided {
		t.Fatalf("empty-board claim honored: %+v", result)
	}
	got, _ := store.GetRound(ctx, round.ID)
	if got.Status != models.RoundStatusActive {
		t.Fatal("failed claim changed round status")
	}
	u, _ := store.GetUser(ctx, player.ID)
	if u.Balance != 90 {
		t.Fatalf("failed claim moved balance to %.2f", u.Balance)
	}

	// Someone else's card.
	if _, err := ledger.Settle(ctx, host.ID, round.ID, card.ID, game.PatternRow); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("foreign card claim: got %v, want unauthorized", err)
	}

	// Card from a different round.
	if _, err := ledger.Settle(ctx, player.ID, "other-round", card.ID, game.PatternRow); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("round mismatch: got %v, want validation error", err)
	}

	// Unknown card.
	if _, err := ledger.Settle(ctx, player.ID, round.ID, "no-card", game.PatternRow); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown card: got %v, want not-found", err)
	}
}

func TestSettleConcurrentClaimsPayExactlyOnce(t *testing.T) {
	store, _, registry, coord, ledger := newTestEngine(t)
	ctx := context.Background()

	host := store.addUser("host", 100)
	a := store.addUser("a", 100)
	b := store.addUser("b", 100)

	room, err := registry.CreateRoom(ctx, host.ID, "room", 10, 1)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	_, seatA, err := registry.JoinRoom(ctx, a.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	_, seatB, err := registry.JoinRoom(ctx, b.ID, room.Code)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	round, err := coord.StartGame(ctx, room.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	cardA := plantCard(t, store, seatA.ID, round.ID)
	cardB := plantCard(t, store, seatB.ID, round.ID)
	if err := store.AppendDrawnNumber(ctx, round.ID, models.IntList{1, 16, 31, 46, 61}); err != nil {
		t.Fatalf("AppendDrawnNumber failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*SettleResult, 2)
	errs := make([]error, 2)
	claims := []struct {
		userID string
		cardID string
	}{
		{a.ID, cardA.ID},
		{b.ID, cardB.ID},
	}
	for i, claim := range claims {
		wg.Add(1)
		go func(i int, userID, cardID string) {
			defer wg.Done()
			results[i], errs[i] = ledger.Settle(ctx, userID, round.ID, cardID, game.PatternRow)
		}(i, claim.userID, claim.cardID)
	}
	wg.Wait()

	wins, decided := 0, 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("claim %d failed: %v", i, errs[i])
		}
		if results[i].IsWinner {
			wins++
		}
		if results[i].AlreadyDecided {
			decided++
		}
	}
	if wins != 1 || decided != 1 {
		t.Fatalf("got %d winners and %d already-decided, want exactly 1 of each", wins, decided)
	}

	store.mu.Lock()
	prizeTxs := 0
	for _, tx := range store.transactions {
		if tx.Type == models.TransactionPrize {
			prizeTxs++
		}
	}
	store.mu.Unlock()
	if prizeTxs != 1 {
		t.Fatalf("recorded %d prize payouts, want 1", prizeTxs)
	}
}
