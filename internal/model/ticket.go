package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket statuses.
const (
	StatusToDo          = "to-do"
	StatusInProgress    = "in-progress"
	StatusAwaitFeedback = "await-feedback"
	StatusDone          = "done"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusAwaitFeedback, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Ticket struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string     `gorm:"not null;default:'to-do';check:status IN ('to-do', 'in-progress', 'await-feedback', 'done')"`
	Priority    string     `gorm:"not null;default:'medium';check:priority IN ('low', 'medium', 'high', 'urgent')"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid"`
	ReviewerID  *uuid.UUID `gorm:"type:uuid"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Board    Board `gorm:"foreignKey:BoardID"`
	Assignee *User `gorm:"foreignKey:AssigneeID"`
	Reviewer *User `gorm:"foreignKey:ReviewerID"`
	Creator  *User `gorm:"foreignKey:CreatedBy"`

	// AssignedTo is the legacy multi-assignment set, kept alongside the
	// single assignee for older clients.
	AssignedTo []User `gorm:"many2many:ticket_assignees"`
}

// OwnerIdentity reports the ticket creator for generic ownership checks.
// Returns uuid.Nil when the creator account has been removed.
func (t *Ticket) OwnerIdentity() uuid.UUID {
	if t.CreatedBy == nil {
		return uuid.Nil
	}
	return *t.CreatedBy
}
