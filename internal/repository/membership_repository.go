package repository

import (
	"context"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipRepository resolves which boards a user can reach. A board
// is accessible to its owner and to every user in board_members; the
// two sources are merged with DISTINCT so nothing is counted twice.
type MembershipRepository struct {
	db *gorm.DB
}

type MembershipRepositoryInterface interface {
	AccessibleBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	IsBoardAccessible(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	MemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error)
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.User, error)
	AddMember(ctx context.Context, boardID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
	ReplaceMembers(ctx context.Context, boardID uuid.UUID, memberIDs []uuid.UUID) error
}

var _ MembershipRepositoryInterface = (*MembershipRepository)(nil)

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// AccessibleBoards returns every board the user owns or is a member of.
func (r *MembershipRepository) AccessibleBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Distinct("boards.*").
		Joins("LEFT JOIN board_members ON board_members.board_id = boards.id").
		Where("boards.owner_id = ? OR board_members.user_id = ?", userID, userID).
		Order("boards.created_at DESC").
		Find(&boards).Error
	return boards, err
}

// IsBoardAccessible is the single-board accessibility check, used on
// every nested lookup.
func (r *MembershipRepository) IsBoardAccessible(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Board{}).
		Joins("LEFT JOIN board_members ON board_members.board_id = boards.id").
		Where("boards.id = ?", boardID).
		Where("boards.owner_id = ? OR board_members.user_id = ?", userID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberIDs returns the IDs of a board's members, owner excluded.
func (r *MembershipRepository) MemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("board_members").
		Where("board_id = ?", boardID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *MembershipRepository) ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.user_id = users.id").
		Where("board_members.board_id = ?", boardID).
		Find(&users).Error
	return users, err
}

func (r *MembershipRepository) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO board_members (board_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		boardID, userID,
	).Error
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM board_members WHERE board_id = ? AND user_id = ?",
		boardID, userID,
	).Error
}

// ReplaceMembers swaps the board's member set for the given one inside
// a transaction so readers never see a half-replaced list.
func (r *MembershipRepository) ReplaceMembers(ctx context.Context, boardID uuid.UUID, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM board_members WHERE board_id = ?", boardID).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			err := tx.Exec(
				"INSERT INTO board_members (board_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				boardID, userID,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
