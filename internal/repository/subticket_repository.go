package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubticketRepository struct {
	db *gorm.DB
}

type SubticketRepositoryInterface interface {
	Create(ctx context.Context, subticket *model.Subticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subticket, error)
	GetByTicketID(ctx context.Context, ticketID uuid.UUID) ([]model.Subticket, error)
	GetMaxPosition(ctx context.Context, ticketID uuid.UUID) (int, error)
	Update(ctx context.Context, subticket *model.Subticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ SubticketRepositoryInterface = (*SubticketRepository)(nil)

func NewSubticketRepository(db *gorm.DB) *SubticketRepository {
	return &SubticketRepository{db: db}
}

func (r *SubticketRepository) Create(ctx context.Context, subticket *model.Subticket) error {
	return r.db.WithContext(ctx).Create(subticket).Error
}

func (r *SubticketRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subticket, error) {
	var subticket model.Subticket
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subticket, nil
}

func (r *SubticketRepository) GetByTicketID(ctx context.Context, ticketID uuid.UUID) ([]model.Subticket, error) {
	var subtickets []model.Subticket
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Order("position").Find(&subtickets).Error
	return subtickets, err
}

func (r *SubticketRepository) GetMaxPosition(ctx context.Context, ticketID uuid.UUID) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.Subticket{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("ticket_id = ?", ticketID).
		Scan(&maxPosition).Error

	return maxPosition.Max, err
}

func (r *SubticketRepository) Update(ctx context.Context, subticket *model.Subticket) error {
	result := r.db.WithContext(ctx).Save(subticket)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubticketNotFound
	}
	return nil
}

func (r *SubticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Subticket{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubticketNotFound
	}
	return nil
}
