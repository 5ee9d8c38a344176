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

type TicketHandler struct {
	ticketRepo     repository.TicketRepositoryInterface
	boardRepo      repository.BoardRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	engine         *policy.Engine
}

func NewTicketHandler(
	ticketRepo repository.TicketRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	engine *policy.Engine,
) *TicketHandler {
	return &TicketHandler{
		ticketRepo:     ticketRepo,
		boardRepo:      boardRepo,
		membershipRepo: membershipRepo,
		engine:         engine,
	}
}

type CreateTicketRequest struct {
	Board       *uuid.UUID  `json:"board"`
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	Assignee    *uuid.UUID  `json:"assignee"`
	Reviewer    *uuid.UUID  `json:"reviewer"`
	AssignedTo  []uuid.UUID `json:"assigned_to"`
	DueDate     *time.Time  `json:"due_date"`
}

type UpdateTicketRequest struct {
	Board       *uuid.UUID   `json:"board"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	Assignee    *uuid.UUID   `json:"assignee"`
	Reviewer    *uuid.UUID   `json:"reviewer"`
	AssignedTo  *[]uuid.UUID `json:"assigned_to"`
	DueDate     *time.Time   `json:"due_date"`

	// Distinguishes "clear the assignee" from "leave it alone": JSON
	// null and a missing key both decode to a nil pointer.
	ClearAssignee bool `json:"clear_assignee"`
	ClearReviewer bool `json:"clear_reviewer"`
	ClearDueDate  bool `json:"clear_due_date"`
}

type TicketResponse struct {
	ID          string   `json:"id"`
	Board       string   `json:"board"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Assignee    *string  `json:"assignee,omitempty"`
	Reviewer    *string  `json:"reviewer,omitempty"`
	AssignedTo  []string `json:"assigned_to"`
	CreatedBy   *string  `json:"created_by,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func ticketResponse(ticket *model.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          ticket.ID.String(),
		Board:       ticket.BoardID.String(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		AssignedTo:  make([]string, 0, len(ticket.AssignedTo)),
		CreatedAt:   ticket.CreatedAt.Format(time.RFC3339),
	}
	if ticket.AssigneeID != nil {
		s := ticket.AssigneeID.String()
		resp.Assignee = &s
	}
	if ticket.ReviewerID != nil {
		s := ticket.ReviewerID.String()
		resp.Reviewer = &s
	}
	if ticket.CreatedBy != nil {
		s := ticket.CreatedBy.String()
		resp.CreatedBy = &s
	}
	if ticket.DueDate != nil {
		s := ticket.DueDate.Format(time.RFC3339)
		resp.DueDate = &s
	}
	for _, user := range ticket.AssignedTo {
		resp.AssignedTo = append(resp.AssignedTo, user.ID.String())
	}
	return resp
}

// memberSet builds the board's accessible-user set as currently stored.
func (h *TicketHandler) memberSet(c *gin.Context, board *model.Board) (policy.MemberSet, bool) {
	memberIDs, err := h.membershipRepo.MemberIDs(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return nil, false
	}
	return policy.NewMemberSet(board.OwnerID, memberIDs), true
}

// Create creates a ticket on a board the user can access.
// @Summary Create a ticket
// @Tags Tickets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateTicketRequest true "Ticket data"
// @Success 201 {object} TicketResponse
// @Router /api/tasks [post]
func (h *TicketHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Board == nil {
		errs := policy.FieldErrors{}
		errs.Add("board", "This field is required.")
		writeFieldErrors(c, errs)
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), *req.Board)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !accessible {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to create tickets on this board"})
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusToDo
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	errs := policy.FieldErrors{}
	if !model.ValidStatus(status) {
		errs.Add("status", "is not a valid status")
	}
	if !model.ValidPriority(priority) {
		errs.Add("priority", "is not a valid priority")
	}
	if len(errs) > 0 {
		writeFieldErrors(c, errs)
		return
	}

	set, ok := h.memberSet(c, board)
	if !ok {
		return
	}
	if errs := policy.ValidateTicketMembers(set, req.Assignee, req.Reviewer, req.AssignedTo); errs != nil {
		writeFieldErrors(c, errs)
		return
	}

	creator := userID
	ticket := &model.Ticket{
		BoardID:     board.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  req.Assignee,
		ReviewerID:  req.Reviewer,
		CreatedBy:   &creator,
		DueDate:     req.DueDate,
	}

	if err := h.ticketRepo.Create(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	if len(req.AssignedTo) > 0 {
		if err := h.ticketRepo.ReplaceAssignees(c.Request.Context(), ticket.ID, req.AssignedTo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign users"})
			return
		}
	}

	resp := ticketResponse(ticket)
	for _, id := range req.AssignedTo {
		resp.AssignedTo = append(resp.AssignedTo, id.String())
	}
	c.JSON(http.StatusCreated, resp)
}

// GetAll lists tickets on every board accessible to the user.
// @Summary List accessible tickets
// @Tags Tickets
// @Security BearerAuth
// @Produce json
// @Success 200 {array} TicketResponse
// @Router /api/tasks [get]
func (h *TicketHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tickets, err := h.ticketRepo.ListAccessible(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}

	c.JSON(http.StatusOK, ticketResponses(tickets))
}

func ticketResponses(tickets []model.Ticket) []TicketResponse {
	response := make([]TicketResponse, len(tickets))
	for i := range tickets {
		response[i] = ticketResponse(&tickets[i])
	}
	return response
}

// getAuthorizedTicket loads a ticket and authorizes the action against
// its board. Inaccessible tickets are reported as missing.
func (h *TicketHandler) getAuthorizedTicket(c *gin.Context, userID uuid.UUID, action policy.Action) *model.Ticket {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return nil
	}

	ticket, err := h.ticketRepo.GetByID(c.Request.Context(), ticketID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		}
		return nil
	}

	accessible, err := h.membershipRepo.IsBoardAccessible(c.Request.Context(), ticket.BoardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return nil
	}

	if decision := h.engine.Ticket(userID, action, accessible); !decision.Allowed() {
		writeDenial(c, decision, "Ticket")
		return nil
	}
	return ticket
}

// GetByID retrieves a single ticket.
// @Summary Retrieve a ticket
// @Tags Tickets
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} TicketResponse
// @Router /api/tasks/{id} [get]
func (h *TicketHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket := h.getAuthorizedTicket(c, userID, policy.ActionRead)
	if ticket == nil {
		return
	}

	c.JSON(http.StatusOK, ticketResponse(ticket))
}

// Update edits a ticket. The board reference is immutable; assignment
// fields are validated against board membership as read at the start of
// the update.
// @Summary Update a ticket
// @Tags Tickets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body UpdateTicketRequest true "Fields to change"
// @Success 200 {object} TicketResponse
// @Router /api/tasks/{id} [patch]
func (h *TicketHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket := h.getAuthorizedTicket(c, userID, policy.ActionWrite)
	if ticket == nil {
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Board != nil && *req.Board != ticket.BoardID {
		c.JSON(http.StatusForbidden, gin.H{"error": "The board of a ticket cannot be changed"})
		return
	}

	errs := policy.FieldErrors{}
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		errs.Add("status", "is not a valid status")
	}
	if req.Priority != nil && !model.ValidPriority(*req.Priority) {
		errs.Add("priority", "is not a valid priority")
	}
	if len(errs) > 0 {
		writeFieldErrors(c, errs)
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), ticket.BoardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}

	set, ok := h.memberSet(c, board)
	if !ok {
		return
	}
	var assignedTo []uuid.UUID
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}
	if errs := policy.ValidateTicketMembers(set, req.Assignee, req.Reviewer, assignedTo); errs != nil {
		writeFieldErrors(c, errs)
		return
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}
	if req.Assignee != nil {
		ticket.AssigneeID = req.Assignee
	} else if req.ClearAssignee {
		ticket.AssigneeID = nil
	}
	if req.Reviewer != nil {
		ticket.ReviewerID = req.Reviewer
	} else if req.ClearReviewer {
		ticket.ReviewerID = nil
	}
	if req.DueDate != nil {
		ticket.DueDate = req.DueDate
	} else if req.ClearDueDate {
		ticket.DueDate = nil
	}

	if err := h.ticketRepo.Update(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}

	if req.AssignedTo != nil {
		if err := h.ticketRepo.ReplaceAssignees(c.Request.Context(), ticket.ID, assignedTo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignments"})
			return
		}
	}

	updated, err := h.ticketRepo.GetByID(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		return
	}

	c.JSON(http.StatusOK, ticketResponse(updated))
}

// Delete removes a ticket and everything under it. Any board-accessible
// user may delete, not only the creator.
// @Summary Delete a ticket
// @Tags Tickets
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 204
// @Router /api/tasks/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket := h.getAuthorizedTicket(c, userID, policy.ActionDelete)
	if ticket == nil {
		return
	}

	if err := h.ticketRepo.Delete(c.Request.Context(), ticket.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ticket"})
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignedToMe lists accessible tickets assigned to the caller.
// @Summary List tickets assigned to the caller
// @Tags Tickets
// @Security BearerAuth
// @Produce json
// @Success 200 {array} TicketResponse
// @Router /api/tasks/assigned-to-me [get]
func (h *TicketHandler) AssignedToMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tickets, err := h.ticketRepo.ListAssignedTo(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}

	c.JSON(http.StatusOK, ticketResponses(tickets))
}

// Reviewing lists accessible tickets waiting for feedback.
// @Summary List tickets awaiting review
// @Tags Tickets
// @Security BearerAuth
// @Produce json
// @Success 200 {array} TicketResponse
// @Router /api/tasks/reviewing [get]
func (h *TicketHandler) Reviewing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	tickets, err := h.ticketRepo.ListByStatus(c.Request.Context(), userID, model.StatusAwaitFeedback)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}

	c.JSON(http.StatusOK, ticketResponses(tickets))
}
