package handler

import (
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/policy"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MemberHandler manages a board's member list as its own sub-resource.
type MemberHandler struct {
	boardRepo      repository.BoardRepositoryInterface
	userRepo       repository.UserRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	engine         *policy.Engine
}

func NewMemberHandler(
	boardRepo repository.BoardRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	engine *policy.Engine,
) *MemberHandler {
	return &MemberHandler{
		boardRepo:      boardRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		engine:         engine,
	}
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type MemberResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsOwner bool   `json:"is_owner"`
}

// loadBoard parses the board route param and fetches the board,
// answering 404 when it does not exist.
func (h *MemberHandler) loadBoard(c *gin.Context) *model.Board {
	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return nil
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}
	return board
}

// Add invites a user to the board by email. Owner only: membership
// changes are a destructive board action under the strict policy.
// @Summary Add a board member
// @Tags Boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body AddMemberRequest true "User email"
// @Success 200 {object} MemberResponse
// @Router /api/boards/{id}/members [post]
func (h *MemberHandler) Add(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.loadBoard(c)
	if board == nil {
		return
	}

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !accessible {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can manage members"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// The owner already has full access and is never stored as a member.
	if target.ID == board.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The owner is already a board member"})
		return
	}

	if err := h.membershipRepo.AddMember(c.Request.Context(), board.ID, target.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusOK, MemberResponse{
		UserID:  target.ID.String(),
		Email:   target.Email,
		Name:    target.FullName(),
		IsOwner: false,
	})
}

// Remove takes a user off the board's member list. Owner only.
// @Summary Remove a board member
// @Tags Boards
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Param user_id path string true "User ID"
// @Success 204
// @Router /api/boards/{id}/members/{user_id} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.loadBoard(c)
	if board == nil {
		return
	}

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !accessible {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can manage members"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	if err := h.membershipRepo.RemoveMember(c.Request.Context(), board.ID, targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the board's accessible users, owner first.
// @Summary List board members
// @Tags Boards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {array} MemberResponse
// @Router /api/boards/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.loadBoard(c)
	if board == nil {
		return
	}

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if decision := h.engine.Board(userID, policy.ActionRead, board, accessible); !decision.Allowed() {
		writeDenial(c, decision, "Board")
		return
	}

	members, err := h.membershipRepo.ListMembers(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]MemberResponse, 0, len(members)+1)

	owner, err := h.userRepo.GetByID(c.Request.Context(), board.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve owner"})
		return
	}
	if owner != nil {
		response = append(response, MemberResponse{
			UserID:  owner.ID.String(),
			Email:   owner.Email,
			Name:    owner.FullName(),
			IsOwner: true,
		})
	}

	for i := range members {
		response = append(response, MemberResponse{
			UserID: members[i].ID.String(),
			Email:  members[i].Email,
			Name:   members[i].FullName(),
		})
	}

	c.JSON(http.StatusOK, response)
}
