package handler

import (
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/policy"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubticketHandler struct {
	subticketRepo  repository.SubticketRepositoryInterface
	ticketRepo     repository.TicketRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	engine         *policy.Engine
}

func NewSubticketHandler(
	subticketRepo repository.SubticketRepositoryInterface,
	ticketRepo repository.TicketRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	engine *policy.Engine,
) *SubticketHandler {
	return &SubticketHandler{
		subticketRepo:  subticketRepo,
		ticketRepo:     ticketRepo,
		membershipRepo: membershipRepo,
		engine:         engine,
	}
}

type CreateSubticketRequest struct {
	Title string `json:"title" binding:"required"`
	Done  bool   `json:"done"`
}

type UpdateSubticketRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

type SubticketResponse struct {
	ID       string `json:"id"`
	TicketID string `json:"ticket"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
	Position int    `json:"position"`
}

func subticketResponse(s *model.Subticket) SubticketResponse {
	return SubticketResponse{
		ID:       s.ID.String(),
		TicketID: s.TicketID.String(),
		Title:    s.Title,
		Done:     s.Done,
		Position: s.Position,
	}
}

// authorizeParentTicket resolves the ticket route param and checks that
// the caller can reach its board. Subtickets have no authorization of
// their own.
func (h *SubticketHandler) authorizeParentTicket(c *gin.Context, userID uuid.UUID, ticketID uuid.UUID, action policy.Action) *model.Ticket {
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

	if decision := h.engine.Subticket(userID, action, accessible); !decision.Allowed() {
		writeDenial(c, decision, "Ticket")
		return nil
	}
	return ticket
}

// ListForTicket lists a ticket's subtickets in position order.
// @Summary List subtickets of a ticket
// @Tags Subtickets
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {array} SubticketResponse
// @Router /api/tasks/{id}/subtasks [get]
func (h *SubticketHandler) ListForTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return
	}

	ticket := h.authorizeParentTicket(c, userID, ticketID, policy.ActionRead)
	if ticket == nil {
		return
	}

	subtickets, err := h.subticketRepo.GetByTicketID(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subtickets"})
		return
	}

	response := make([]SubticketResponse, len(subtickets))
	for i := range subtickets {
		response[i] = subticketResponse(&subtickets[i])
	}

	c.JSON(http.StatusOK, response)
}

// CreateForTicket appends a subticket to a ticket.
// @Summary Create a subticket
// @Tags Subtickets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body CreateSubticketRequest true "Subticket data"
// @Success 201 {object} SubticketResponse
// @Router /api/tasks/{id}/subtasks [post]
func (h *SubticketHandler) CreateForTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return
	}

	ticket := h.authorizeParentTicket(c, userID, ticketID, policy.ActionWrite)
	if ticket == nil {
		return
	}

	var req CreateSubticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	maxPosition, err := h.subticketRepo.GetMaxPosition(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine position"})
		return
	}

	subticket := &model.Subticket{
		TicketID: ticket.ID,
		Title:    req.Title,
		Done:     req.Done,
		Position: maxPosition + 1,
	}

	if err := h.subticketRepo.Create(c.Request.Context(), subticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subticket"})
		return
	}

	c.JSON(http.StatusCreated, subticketResponse(subticket))
}

// getAuthorizedSubticket loads a subticket and authorizes through the
// parent ticket's board.
func (h *SubticketHandler) getAuthorizedSubticket(c *gin.Context, userID uuid.UUID, action policy.Action) *model.Subticket {
	subticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subticket ID format"})
		return nil
	}

	subticket, err := h.subticketRepo.GetByID(c.Request.Context(), subticketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve subticket"})
		return nil
	}
	if subticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subticket not found"})
		return nil
	}

	if h.authorizeParentTicket(c, userID, subticket.TicketID, action) == nil {
		return nil
	}
	return subticket
}

// Update edits a subticket's title or done flag.
// @Summary Update a subticket
// @Tags Subtickets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Subticket ID"
// @Param request body UpdateSubticketRequest true "Fields to change"
// @Success 200 {object} SubticketResponse
// @Router /api/subtasks/{id} [patch]
func (h *SubticketHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	subticket := h.getAuthorizedSubticket(c, userID, policy.ActionWrite)
	if subticket == nil {
		return
	}

	var req UpdateSubticketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != nil {
		subticket.Title = *req.Title
	}
	if req.Done != nil {
		subticket.Done = *req.Done
	}

	if err := h.subticketRepo.Update(c.Request.Context(), subticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subticket"})
		return
	}

	c.JSON(http.StatusOK, subticketResponse(subticket))
}

// Delete removes a subticket.
// @Summary Delete a subticket
// @Tags Subtickets
// @Security BearerAuth
// @Param id path string true "Subticket ID"
// @Success 204
// @Router /api/subtasks/{id} [delete]
func (h *SubticketHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	subticket := h.getAuthorizedSubticket(c, userID, policy.ActionDelete)
	if subticket == nil {
		return
	}

	if err := h.subticketRepo.Delete(c.Request.Context(), subticket.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subticket"})
		return
	}

	c.Status(http.StatusNoContent)
}
