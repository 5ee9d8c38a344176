package handler_test

import (
	"context"

	"taskboard/internal/middleware"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// authedRouter returns a test router with the given user pre-authenticated,
// skipping the JWT middleware.
func authedRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	return r
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, ids)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) Update(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) AccessibleBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, userID)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Error(1)
	}
	return boards.([]model.Board), args.Error(1)
}

func (m *MockMembershipRepository) IsBoardAccessible(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, boardID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) MemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, boardID)
	ids := args.Get(0)
	if ids == nil {
		return nil, args.Error(1)
	}
	return ids.([]uuid.UUID), args.Error(1)
}

func (m *MockMembershipRepository) ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, boardID)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func (m *MockMembershipRepository) AddMember(ctx context.Context, boardID, userID uuid.UUID) error {
	args := m.Called(ctx, boardID, userID)
	return args.Error(0)
}

func (m *MockMembershipRepository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	args := m.Called(ctx, boardID, userID)
	return args.Error(0)
}

func (m *MockMembershipRepository) ReplaceMembers(ctx context.Context, boardID uuid.UUID, memberIDs []uuid.UUID) error {
	args := m.Called(ctx, boardID, memberIDs)
	return args.Error(0)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	ticket := args.Get(0)
	if ticket == nil {
		return nil, args.Error(1)
	}
	return ticket.(*model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListAccessible(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error) {
	args := m.Called(ctx, userID)
	tickets := args.Get(0)
	if tickets == nil {
		return nil, args.Error(1)
	}
	return tickets.([]model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]model.Ticket, error) {
	args := m.Called(ctx, userID)
	tickets := args.Get(0)
	if tickets == nil {
		return nil, args.Error(1)
	}
	return tickets.([]model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Ticket, error) {
	args := m.Called(ctx, userID, status)
	tickets := args.Get(0)
	if tickets == nil {
		return nil, args.Error(1)
	}
	return tickets.([]model.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) ReplaceAssignees(ctx context.Context, ticketID uuid.UUID, userIDs []uuid.UUID) error {
	args := m.Called(ctx, ticketID, userIDs)
	return args.Error(0)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSubticketRepository struct {
	mock.Mock
}

func (m *MockSubticketRepository) Create(ctx context.Context, subticket *model.Subticket) error {
	args := m.Called(ctx, subticket)
	return args.Error(0)
}

func (m *MockSubticketRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subticket, error) {
	args := m.Called(ctx, id)
	subticket := args.Get(0)
	if subticket == nil {
		return nil, args.Error(1)
	}
	return subticket.(*model.Subticket), args.Error(1)
}

func (m *MockSubticketRepository) GetByTicketID(ctx context.Context, ticketID uuid.UUID) ([]model.Subticket, error) {
	args := m.Called(ctx, ticketID)
	subtickets := args.Get(0)
	if subtickets == nil {
		return nil, args.Error(1)
	}
	return subtickets.([]model.Subticket), args.Error(1)
}

func (m *MockSubticketRepository) GetMaxPosition(ctx context.Context, ticketID uuid.UUID) (int, error) {
	args := m.Called(ctx, ticketID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubticketRepository) Update(ctx context.Context, subticket *model.Subticket) error {
	args := m.Called(ctx, subticket)
	return args.Error(0)
}

func (m *MockSubticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	args := m.Called(ctx, id)
	comment := args.Get(0)
	if comment == nil {
		return nil, args.Error(1)
	}
	return comment.(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByTicketID(ctx context.Context, ticketID uuid.UUID) ([]model.Comment, error) {
	args := m.Called(ctx, ticketID)
	comments := args.Get(0)
	if comments == nil {
		return nil, args.Error(1)
	}
	return comments.([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
