package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/models"
)

// newTestEngine wires the services against the in-memory store. The draw
// scheduler interval is long enough that ticks never fire during a test.
func newTestEngine(t *testing.T) (*fakeStore, *Hub, *RoomRegistry, *RoundCoordinator, *PrizeLedger) {
	t.Helper()

	store := newFakeStore()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	coord := NewRoundCoordinator(store, store, store, hub, time.Hour)
	t.Cleanup(coord.Shutdown)

	ledger := NewPrizeLedger(store, store, store, coord, hub)
	registry := NewRoomRegistry(store, store, store, store)
	return store, hub, registry, coord, ledger
}

// fakeStore is an in-memory implementation of the store interfaces with the
// same atomicity guarantees the Postgres repositories provide.
type fakeStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	rooms        map[string]*models.Room
	participants map[string]*models.Participant
	rounds       map[string]*models.Round
	cards        map[string]*models.Card
	transactions []models.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string]*models.User),
		rooms:        make(map[string]*models.Room),
		participants: make(map[string]*models.Participant),
		rounds:       make(map[string]*models.Round),
		cards:        make(map[string]*models.Card),
	}
}

func (s *fakeStore) addUser(name string, balance float64) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Name: name, Balance: balance}
	s.users[u.ID] = u
	return u
}

// ---- UserStore ----

func (s *fakeStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) CreditBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u.Balance += amount
	s.transactions = append(s.transactions, models.Transaction{UserID: userID, Type: txType, Amount: amount, BalanceAfter: u.Balance})
	cp := *u
	return &cp, nil
}

func (s *fakeStore) DebitBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if u.Balance < amount {
		return nil, apperr.ErrInsufficientBalance
	}
	u.Balance -= amount
	s.transactions = append(s.transactions, models.Transaction{UserID: userID, Type: txType, Amount: amount, BalanceAfter: u.Balance})
	cp := *u
	return &cp, nil
}

// ---- RoomStore ----

func (s *fakeStore) CreateRoomWithHost(ctx context.Context, room *models.Room) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	cp := *room
	s.rooms[room.ID] = &cp
	p := &models.Participant{ID: uuid.NewString(), UserID: room.HostID, RoomID: room.ID}
	s.participants[p.ID] = p
	pc := *p
	return &pc, nil
}

func (s *fakeStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Code == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *fakeStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) UpdateRoomStatus(ctx context.Context, roomID, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return apperr.ErrNotFound
	}
	if r.Status != from {
		return apperr.ErrState
	}
	r.Status = to
	return nil
}

func (s *fakeStore) AddParticipant(ctx context.Context, userID, roomID string, entryFee float64) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if room.Status != models.RoomWaiting {
		return nil, apperr.ErrState
	}
	for _, p := range s.participants {
		if p.UserID == userID && p.RoomID == roomID {
			return nil, apperr.ErrAlreadyMember
		}
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if u.Balance < entryFee {
		return nil, apperr.ErrInsufficientBalance
	}
	u.Balance -= entryFee
	if entryFee > 0 {
		s.transactions = append(s.transactions, models.Transaction{UserID: userID, Type: models.TransactionEntryFee, Amount: entryFee, BalanceAfter: u.Balance})
	}
	p := &models.Participant{ID: uuid.NewString(), UserID: userID, RoomID: roomID}
	s.participants[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *fakeStore) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Participant
	for _, p := range s.participants {
		if p.RoomID == roomID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// ---- RoundStore ----

func (s *fakeStore) CreateRound(ctx context.Context, round *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	cp := *round
	cp.DrawnNumbers = round.DrawnNumbers.Copy()
	s.rounds[round.ID] = &cp
	return nil
}

func (s *fakeStore) GetRound(ctx context.Context, id string) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r
	cp.DrawnNumbers = r.DrawnNumbers.Copy()
	return &cp, nil
}

func (s *fakeStore) GetActiveRound(ctx context.Context, roomID string) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rounds {
		if r.RoomID == roomID && r.Status == models.RoundStatusActive {
			cp := *r
			cp.DrawnNumbers = r.DrawnNumbers.Copy()
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *fakeStore) CountFinishedRounds(ctx context.Context, roomID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.rounds {
		if r.RoomID == roomID && r.Status == models.RoundStatusFinished {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) AppendDrawnNumber(ctx context.Context, roundID string, seq models.IntList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundID]
	if !ok {
		return apperr.ErrNotFound
	}
	if r.Status != models.RoundStatusActive {
		return apperr.ErrState
	}
	r.DrawnNumbers = seq.Copy()
	return nil
}

func (s *fakeStore) FinishRound(ctx context.Context, roundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundID]
	if !ok {
		return apperr.ErrNotFound
	}
	if r.Status != models.RoundStatusActive {
		return apperr.ErrAlreadyDecided
	}
	r.Status = models.RoundStatusFinished
	return nil
}

func (s *fakeStore) SettleWin(ctx context.Context, p SettleParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[p.RoundID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if r.Status != models.RoundStatusActive {
		return nil, apperr.ErrAlreadyDecided
	}
	u, ok := s.users[p.WinnerUserID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	part, ok := s.participants[p.ParticipantID]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	r.Status = models.RoundStatusFinished
	winnerID := p.WinnerUserID
	prize := p.Prize
	r.WinnerID = &winnerID
	r.Prize = &prize
	u.Balance += prize
	part.Winnings += prize
	s.transactions = append(s.transactions, models.Transaction{UserID: winnerID, Type: models.TransactionPrize, Amount: prize, BalanceAfter: u.Balance})

	cp := *u
	return &cp, nil
}

// ---- CardStore ----

func (s *fakeStore) CreateCards(ctx context.Context, cards []models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range cards {
		if cards[i].ID == "" {
			cards[i].ID = uuid.NewString()
		}
		cp := cards[i]
		cp.Numbers = cards[i].Numbers.Copy()
		cp.Marked = cards[i].Marked.Copy()
		s.cards[cp.ID] = &cp
	}
	return nil
}

func (s *fakeStore) GetCard(ctx context.Context, id string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *c
	cp.Numbers = c.Numbers.Copy()
	cp.Marked = c.Marked.Copy()
	return &cp, nil
}

func (s *fakeStore) ListRoundCards(ctx context.Context, roundID string) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Card
	for _, c := range s.cards {
		if c.RoundID == roundID {
			cp := *c
			cp.Numbers = c.Numbers.Copy()
			cp.Marked = c.Marked.Copy()
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *fakeStore) ListParticipantCards(ctx context.Context, participantID, roundID string) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Card
	for _, c := range s.cards {
		if c.ParticipantID == participantID && c.RoundID == roundID {
			cp := *c
			cp.Numbers = c.Numbers.Copy()
			cp.Marked = c.Marked.Copy()
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkNumber(ctx context.Context, roundID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		if c.RoundID == roundID && c.Numbers.Contains(n) && !c.Marked.Contains(n) {
			c.Marked = append(c.Marked, n)
		}
	}
	return nil
}
