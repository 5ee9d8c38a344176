package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

type BoardRepositoryInterface interface {
	Create(ctx context.Context, board *model.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

// Delete removes the board and everything under it. Tickets, their
// subtickets and comments, the member rows and the assignment rows all
// go in one transaction so a failed delete leaves the board intact.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticketIDs := tx.Model(&model.Ticket{}).Select("id").Where("board_id = ?", id)

		if err := tx.Where("ticket_id IN (?)", ticketIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ticket_id IN (?)", ticketIDs).Delete(&model.Subticket{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM ticket_assignees WHERE ticket_id IN (SELECT id FROM tickets WHERE board_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM board_members WHERE board_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Board{}, "id = ?", id).Error
	})
}
