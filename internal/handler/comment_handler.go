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

type CommentHandler struct {
	commentRepo    repository.CommentRepositoryInterface
	ticketRepo     repository.TicketRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	engine         *policy.Engine
}

func NewCommentHandler(
	commentRepo repository.CommentRepositoryInterface,
	ticketRepo repository.TicketRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	engine *policy.Engine,
) *CommentHandler {
	return &CommentHandler{
		commentRepo:    commentRepo,
		ticketRepo:     ticketRepo,
		membershipRepo: membershipRepo,
		engine:         engine,
	}
}

// CreateCommentRequest is the standalone form; the ticket reference is
// required in the body. The nested route fills it from the URL instead.
type CreateCommentRequest struct {
	Ticket *uuid.UUID `json:"ticket"`
	Text   string     `json:"text" binding:"required"`
}

type NestedCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID         string `json:"id"`
	Ticket     string `json:"ticket"`
	Author     string `json:"author"`
	AuthorName string `json:"author_name,omitempty"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

func commentResponse(comment *model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        comment.ID.String(),
		Ticket:    comment.TicketID.String(),
		Author:    comment.AuthorID.String(),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
	if comment.Author.ID != uuid.Nil {
		resp.AuthorName = comment.Author.FullName()
	}
	return resp
}

// accessibleTicket loads the ticket and checks that the caller can
// reach its board. Missing and inaccessible tickets both answer 404.
func (h *CommentHandler) accessibleTicket(c *gin.Context, userID, ticketID uuid.UUID) *model.Ticket {
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
	if !accessible {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return nil
	}
	return ticket
}

func (h *CommentHandler) create(c *gin.Context, userID uuid.UUID, ticketID uuid.UUID, text string) {
	ticket := h.accessibleTicket(c, userID, ticketID)
	if ticket == nil {
		return
	}

	// The author is always the principal; it is never read from the body.
	comment := &model.Comment{
		TicketID: ticket.ID,
		AuthorID: userID,
		Text:     text,
	}

	if err := h.commentRepo.Create(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, commentResponse(comment))
}

// Create posts a comment through the standalone collection; the body
// must name the ticket.
// @Summary Create a comment
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateCommentRequest true "Comment data"
// @Success 201 {object} CommentResponse
// @Router /api/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Ticket == nil {
		errs := policy.FieldErrors{}
		errs.Add("ticket", "This field is required.")
		writeFieldErrors(c, errs)
		return
	}

	h.create(c, userID, *req.Ticket, req.Text)
}

// CreateForTicket posts a comment on the ticket named in the URL; the
// body carries only the text.
// @Summary Create a comment on a ticket
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body NestedCommentRequest true "Comment text"
// @Success 201 {object} CommentResponse
// @Router /api/tasks/{id}/comments [post]
func (h *CommentHandler) CreateForTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return
	}

	var req NestedCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.create(c, userID, ticketID, req.Text)
}

// ListForTicket lists a ticket's comments oldest first.
// @Summary List comments of a ticket
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {array} CommentResponse
// @Router /api/tasks/{id}/comments [get]
func (h *CommentHandler) ListForTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return
	}

	ticket := h.accessibleTicket(c, userID, ticketID)
	if ticket == nil {
		return
	}

	comments, err := h.commentRepo.GetByTicketID(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]CommentResponse, len(comments))
	for i := range comments {
		response[i] = commentResponse(&comments[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID retrieves a single comment.
// @Summary Retrieve a comment
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} CommentResponse
// @Router /api/comments/{id} [get]
func (h *CommentHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return
	}

	comment := h.authorizeComment(c, userID, commentID, policy.ActionRead)
	if comment == nil {
		return
	}

	c.JSON(http.StatusOK, commentResponse(comment))
}

// authorizeComment runs the two-stage comment check: board access first
// (a miss hides the comment's existence), authorship second for writes
// and deletes. On denial or failure the response is already written and
// nil is returned.
func (h *CommentHandler) authorizeComment(c *gin.Context, userID, commentID uuid.UUID, action policy.Action) *model.Comment {
	comment, err := h.commentRepo.GetByID(c.Request.Context(), commentID)
	if err != nil {
		if err == repository.ErrCommentNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return nil
	}

	ticket, err := h.ticketRepo.GetByID(c.Request.Context(), comment.TicketID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
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

	if decision := h.engine.Comment(userID, action, comment, accessible); !decision.Allowed() {
		writeDenial(c, decision, "Comment")
		return nil
	}
	return comment
}

// Delete removes a comment. Only the author may delete, even the board
// owner is refused; users outside the board are told it does not exist.
// @Summary Delete a comment
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 204
// @Router /api/comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return
	}

	comment := h.authorizeComment(c, userID, commentID, policy.ActionDelete)
	if comment == nil {
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteNested removes a comment through the nested ticket route. The
// comment must actually belong to the ticket in the URL.
// @Summary Delete a comment of a ticket
// @Tags Comments
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param comment_id path string true "Comment ID"
// @Success 204
// @Router /api/tasks/{id}/comments/{comment_id} [delete]
func (h *CommentHandler) DeleteNested(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID format"})
		return
	}

	commentID, err := uuid.Parse(c.Param("comment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID format"})
		return
	}

	comment := h.authorizeComment(c, userID, commentID, policy.ActionDelete)
	if comment == nil {
		return
	}

	if comment.TicketID != ticketID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := h.commentRepo.Delete(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.Status(http.StatusNoContent)
}
