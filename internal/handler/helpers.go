package handler

import (
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID extracts the authenticated principal set by the auth
// middleware. When it is missing the response has already been written.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

// writeDenial renders a policy denial. NotFound hides the entity's
// existence; Forbidden admits it exists but refuses the action.
func writeDenial(c *gin.Context, decision policy.Decision, kind string) {
	switch decision {
	case policy.NotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": kind + " not found"})
	case policy.Forbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected authorization result"})
	}
}

// writeFieldErrors renders validation failures as a field → messages map.
func writeFieldErrors(c *gin.Context, errs policy.FieldErrors) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}
