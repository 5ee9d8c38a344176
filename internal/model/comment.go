package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Ticket Ticket `gorm:"foreignKey:TicketID"`
	Author User   `gorm:"foreignKey:AuthorID"`
}

// OwnerIdentity reports the comment author for generic ownership checks.
func (c *Comment) OwnerIdentity() uuid.UUID {
	return c.AuthorID
}
