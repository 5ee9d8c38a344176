package repository

import "errors"

// Common repository errors
var (
	// ErrTicketNotFound is returned when a ticket is not found
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrSubticketNotFound is returned when a subticket is not found
	ErrSubticketNotFound = errors.New("subticket not found")

	// ErrCommentNotFound is returned when a comment is not found
	ErrCommentNotFound = errors.New("comment not found")
)
