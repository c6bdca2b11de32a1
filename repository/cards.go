package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bingo-live/backend/models"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) CreateCards(ctx context.Context, cards []models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

func (r *CardRepository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).First(&card, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *CardRepository) ListRoundCards(ctx context.Context, roundID string) ([]models.Card, error) {
	var cards []models.Card
	if err := r.db.WithContext(ctx).Where("round_id = ?", roundID).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *CardRepository) ListParticipantCards(ctx context.Context, participantID, roundID string) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.WithContext(ctx).
		Where("participant_id = ? AND round_id = ?", participantID, roundID).
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// MarkNumber appends n to the marked set of every card in the round whose
// numbers include it. Marks only ever grow, so a lost update on one card is
// repaired by the next draw reading the same drawn sequence.
func (r *CardRepository) MarkNumber(ctx context.Context, roundID string, n int) error {
	cards, err := r.ListRoundCards(ctx, roundID)
	if err != nil {
		return err
	}
	for i := range cards {
		card := &cards[i]
		if !card.Numbers.Contains(n) || card.Marked.Contains(n) {
			continue
		}
		card.Marked = append(card.Marked, n)
		if err := r.db.WithContext(ctx).Model(card).Update("marked", card.Marked).Error; err != nil {
			return err
		}
	}
	return nil
}
