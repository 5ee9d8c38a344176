package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	Username       string    `gorm:"uniqueIndex;not null"`
	FirstName      string
	LastName       string
	HashedPassword string    `gorm:"not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// FullName returns the user's display name. When a name part is missing
// the remaining part (or the username) is repeated; existing clients
// rely on this exact shape.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName + " " + u.FirstName
	case u.LastName != "":
		return u.LastName + " " + u.LastName
	default:
		return u.Username + " " + u.Username
	}
}

// SplitFullName splits a submitted full name on the first space.
// Everything after the first space becomes the last name.
func SplitFullName(fullname string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(fullname), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
