package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) CreditBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", apperr.ErrValidation)
	}

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}

		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return translate(err)
		}

		return tx.Create(&models.Transaction{
			UserID:       userID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: user.Balance,
			Metadata:     encodeMetadata(metadata),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) DebitBalance(ctx context.Context, userID string, amount float64, txType models.TransactionType, metadata map[string]interface{}) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive", apperr.ErrValidation)
	}

	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional on sufficient balance so it can never go negative.
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperr.ErrNotFound
			}
			return apperr.ErrInsufficientBalance
		}

		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return translate(err)
		}

		return tx.Create(&models.Transaction{
			UserID:       userID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: user.Balance,
			Metadata:     encodeMetadata(metadata),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
