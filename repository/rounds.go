package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/models"
	"github.com/bingo-live/backend/services"
)

type RoundRepository struct {
	db *gorm.DB
}

func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) CreateRound(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *RoundRepository) GetRound(ctx context.Context, id string) (*models.Round, error) {
	var round models.Round
	if err := r.db.WithContext(ctx).First(&round, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *RoundRepository) GetActiveRound(ctx context.Context, roomID string) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", roomID, models.RoundStatusActive).
		First(&round).Error
	if err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *RoundRepository) CountFinishedRounds(ctx context.Context, roomID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Round{}).
		Where("room_id = ? AND status = ?", roomID, models.RoundStatusFinished).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *RoundRepository) AppendDrawnNumber(ctx context.Context, roundID string, seq models.IntList) error {
	res := r.db.WithContext(ctx).Model(&models.Round{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusActive).
		Update("drawn_numbers", seq)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Round{}).Where("id = ?", roundID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		return apperr.ErrState
	}
	return nil
}

func (r *RoundRepository) FinishRound(ctx context.Context, roundID string) error {
	res := r.db.WithContext(ctx).Model(&models.Round{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusActive).
		Update("status", models.RoundStatusFinished)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Round{}).Where("id = ?", roundID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		return apperr.ErrAlreadyDecided
	}
	return nil
}

// SettleWin commits the whole payout as one transaction, guarded by the
// round still being active. The guard is what makes a second concurrent
// settle observe ErrAlreadyDecided instead of paying twice.
func (r *RoundRepository) SettleWin(ctx context.Context, p services.SettleParams) (*models.User, error) {
	var winner models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Round{}).
			Where("id = ? AND status = ?", p.RoundID, models.RoundStatusActive).
			Updates(map[string]interface{}{
				"status":    models.RoundStatusFinished,
				"winner_id": p.WinnerUserID,
				"prize":     p.Prize,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrAlreadyDecided
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", p.WinnerUserID).
			Update("balance", gorm.Expr("balance + ?", p.Prize)).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Participant{}).
			Where("id = ?", p.ParticipantID).
			Update("winnings", gorm.Expr("winnings + ?", p.Prize)).Error; err != nil {
			return err
		}

		if err := tx.First(&winner, "id = ?", p.WinnerUserID).Error; err != nil {
			return translate(err)
		}

		return tx.Create(&models.Transaction{
			UserID:       p.WinnerUserID,
			Type:         models.TransactionPrize,
			Amount:       p.Prize,
			BalanceAfter: winner.Balance,
			Metadata: encodeMetadata(map[string]interface{}{
				"round_id": p.RoundID,
				"card_id":  p.CardID,
				"pattern":  p.Pattern,
			}),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &winner, nil
}
