package model

import (
	"github.com/google/uuid"
)

type Subticket struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title    string    `gorm:"not null"`
	Done     bool      `gorm:"not null;default:false"`
	Position int       `gorm:"not null"`

	Ticket Ticket `gorm:"foreignKey:TicketID"`
}
