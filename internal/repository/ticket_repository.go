package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

type TicketRepositoryInterface interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error)
	ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error)
	ListByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Ticket, error)
	Update(ctx context.Context, ticket *model.Ticket) error
	ReplaceAssignees(ctx context.Context, ticketID uuid.UUID, userIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TicketRepositoryInterface = (*TicketRepository)(nil)

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// GetByID retrieves a ticket with its legacy assignee set preloaded.
func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var ticket model.Ticket
	result := r.db.WithContext(ctx).Preload("AssignedTo").First(&ticket, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, result.Error
	}
	return &ticket, nil
}

// accessibleScope narrows a ticket query to boards the user owns or is
// a member of. This is the list-scoping filter applied to every ticket
// listing, so inaccessible tickets never appear in results.
func accessibleScope(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN boards ON boards.id = tickets.board_id").
			Joins("LEFT JOIN board_members ON board_members.board_id = boards.id AND board_members.user_id = ?", userID).
			Where("boards.owner_id = ? OR board_members.user_id = ?", userID, userID)
	}
}

// ListAccessible returns every ticket on boards accessible to the user.
func (r *TicketRepository) ListAccessible(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Scopes(accessibleScope(userID)).
		Preload("AssignedTo").
		Order("tickets.created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

// ListAssignedTo returns accessible tickets where the user is the
// assignee or appears in the legacy assignment set.
func (r *TicketRepository) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Scopes(accessibleScope(userID)).
		Where("tickets.assignee_id = ? OR tickets.id IN (SELECT ticket_id FROM ticket_assignees WHERE user_id = ?)", userID, userID).
		Preload("AssignedTo").
		Order("tickets.created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Scopes(accessibleScope(userID)).
		Where("tickets.status = ?", status).
		Preload("AssignedTo").
		Order("tickets.created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	result := r.db.WithContext(ctx).Omit("AssignedTo").Save(ticket)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// ReplaceAssignees swaps the ticket's legacy multi-assignment set.
func (r *TicketRepository) ReplaceAssignees(ctx context.Context, ticketID uuid.UUID, userIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ticket_assignees WHERE ticket_id = ?", ticketID).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			err := tx.Exec(
				"INSERT INTO ticket_assignees (ticket_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				ticketID, userID,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the ticket and its subtickets, comments and
// assignment rows in one transaction.
func (r *TicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ticket_id = ?", id).Delete(&model.Subticket{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM ticket_assignees WHERE ticket_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Ticket{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketNotFound
		}
		return nil
	})
}
