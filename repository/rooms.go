package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bingo-live/backend/apperr"
	"github.com/bingo-live/backend/models"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) CreateRoomWithHost(ctx context.Context, room *models.Room) (*models.Participant, error) {
	participant := &models.Participant{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		participant.UserID = room.HostID
		participant.RoomID = room.ID
		return tx.Create(participant).Error
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *RoomRepository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *RoomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoomRepository) UpdateRoomStatus(ctx context.Context, roomID, from, to string) error {
	res := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status = ?", roomID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("%w: room is no longer %s", apperr.ErrState, from)
	}
	return nil
}

// AddParticipant escrows the entry fee and seats the user in one
// transaction: the debit and the participant row commit together or not at
// all. The room status is re-checked under a row lock inside the
// transaction, so a join racing with a game start cannot escrow into an
// active room.
func (r *RoomRepository) AddParticipant(ctx context.Context, userID, roomID string, entryFee float64) (*models.Participant, error) {
	participant := &models.Participant{UserID: userID, RoomID: roomID}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, "id = ?", roomID).Error; err != nil {
			return translate(err)
		}
		if room.Status != models.RoomWaiting {
			return fmt.Errorf("%w: room is %s", apperr.ErrState, room.Status)
		}

		var seated int64
		if err := tx.Model(&models.Participant{}).
			Where("user_id = ? AND room_id = ?", userID, roomID).
			Count(&seated).Error; err != nil {
			return err
		}
		if seated > 0 {
			return apperr.ErrAlreadyMember
		}

		if entryFee > 0 {
			res := tx.Model(&models.User{}).
				Where("id = ? AND balance >= ?", userID, entryFee).
				Update("balance", gorm.Expr("balance - ?", entryFee))
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

			var user models.User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return translate(err)
			}
			if err := tx.Create(&models.Transaction{
				UserID:       userID,
				Type:         models.TransactionEntryFee,
				Amount:       entryFee,
				BalanceAfter: user.Balance,
				Metadata:     encodeMetadata(map[string]interface{}{"room_id": roomID}),
			}).Error; err != nil {
				return err
			}
		} else {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperr.ErrNotFound
			}
		}

		return tx.Create(participant).Error
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *RoomRepository) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	var participant models.Participant
	if err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &participant, nil
}

func (r *RoomRepository) ListParticipants(ctx context.Context, roomID string) ([]models.Participant, error) {
	var participants []models.Participant
	if err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}
