package handler

import (
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/policy"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardHandler struct {
	boardRepo      repository.BoardRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	userRepo       repository.UserRepositoryInterface
	engine         *policy.Engine
}

func NewBoardHandler(
	boardRepo repository.BoardRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	engine *policy.Engine,
) *BoardHandler {
	return &BoardHandler{
		boardRepo:      boardRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		engine:         engine,
	}
}

type CreateBoardRequest struct {
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	Members     []uuid.UUID `json:"members"`
}

type UpdateBoardRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Members     *[]uuid.UUID `json:"members"`
}

type BoardResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	OwnerID     string   `json:"owner_id"`
	Members     []string `json:"members,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func boardResponse(board *model.Board, memberIDs []uuid.UUID) BoardResponse {
	resp := BoardResponse{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		CreatedAt:   board.CreatedAt.Format(time.RFC3339),
	}
	for _, id := range memberIDs {
		resp.Members = append(resp.Members, id.String())
	}
	return resp
}

// resolveMembers checks that every proposed member exists, dropping the
// owner from the list: the owner has full access already and is never
// stored as a member.
func (h *BoardHandler) resolveMembers(c *gin.Context, ownerID uuid.UUID, proposed []uuid.UUID) ([]uuid.UUID, bool) {
	memberIDs := make([]uuid.UUID, 0, len(proposed))
	seen := make(map[uuid.UUID]struct{}, len(proposed))
	for _, id := range proposed {
		if id == ownerID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}

	if len(memberIDs) > 0 {
		users, err := h.userRepo.GetByIDs(c.Request.Context(), memberIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve members"})
			return nil, false
		}
		if len(users) != len(memberIDs) {
			errs := policy.FieldErrors{}
			errs.Add("members", "contains an unknown user")
			writeFieldErrors(c, errs)
			return nil, false
		}
	}
	return memberIDs, true
}

// Create creates a board owned by the authenticated user.
// @Summary Create a board
// @Tags Boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBoardRequest true "Board data"
// @Success 201 {object} BoardResponse
// @Router /api/boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	memberIDs, ok := h.resolveMembers(c, ownerID, req.Members)
	if !ok {
		return
	}

	board := &model.Board{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	if len(memberIDs) > 0 {
		if err := h.membershipRepo.ReplaceMembers(c.Request.Context(), board.ID, memberIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add members"})
			return
		}
	}

	c.JSON(http.StatusCreated, boardResponse(board, memberIDs))
}

// GetAll lists every board the user owns or is a member of.
// @Summary List accessible boards
// @Tags Boards
// @Security BearerAuth
// @Produce json
// @Success 200 {array} BoardResponse
// @Router /api/boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boards, err := h.membershipRepo.AccessibleBoards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = boardResponse(&boards[i], nil)
	}

	c.JSON(http.StatusOK, response)
}

// getAuthorizedBoard loads a board and authorizes the action. A board
// that exists but is out of reach is reported as missing.
func (h *BoardHandler) getAuthorizedBoard(c *gin.Context, userID uuid.UUID, action policy.Action) *model.Board {
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

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil
	}

	if decision := h.engine.Board(userID, action, board, accessible); !decision.Allowed() {
		writeDenial(c, decision, "Board")
		return nil
	}
	return board
}

// GetByID retrieves a single board with its member list.
// @Summary Retrieve a board
// @Tags Boards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} BoardResponse
// @Router /api/boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.getAuthorizedBoard(c, userID, policy.ActionRead)
	if board == nil {
		return
	}

	memberIDs, err := h.membershipRepo.MemberIDs(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	c.JSON(http.StatusOK, boardResponse(board, memberIDs))
}

// Update edits title, description and optionally replaces the member
// set. Who may edit depends on the configured board write policy.
// @Summary Update a board
// @Tags Boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param request body UpdateBoardRequest true "Fields to change"
// @Success 200 {object} BoardResponse
// @Router /api/boards/{id} [patch]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.getAuthorizedBoard(c, userID, policy.ActionWrite)
	if board == nil {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Validate everything before touching the database: a rejected
	// member list must not leave a half-applied update behind.
	var memberIDs []uuid.UUID
	if req.Members != nil {
		memberIDs, ok = h.resolveMembers(c, board.OwnerID, *req.Members)
		if !ok {
			return
		}
	}

	if req.Title != nil {
		board.Title = *req.Title
	}
	if req.Description != nil {
		board.Description = *req.Description
	}

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	if req.Members != nil {
		if err := h.membershipRepo.ReplaceMembers(c.Request.Context(), board.ID, memberIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update members"})
			return
		}
	} else {
		var err error
		memberIDs, err = h.membershipRepo.MemberIDs(c.Request.Context(), board.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
			return
		}
	}

	c.JSON(http.StatusOK, boardResponse(board, memberIDs))
}

// Delete removes a board and everything under it. Owner only.
// @Summary Delete a board
// @Tags Boards
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 204
// @Router /api/boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board := h.getAuthorizedBoard(c, userID, policy.ActionDelete)
	if board == nil {
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), board.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.Status(http.StatusNoContent)
}
