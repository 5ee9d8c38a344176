package policy

import "github.com/google/uuid"

// Action is the class of operation being authorized.
type Action int

const (
	ActionRead Action = iota
	ActionWrite
	ActionDelete
)

// Decision is the outcome of an authorization check. NotFound is
// returned instead of Forbidden whenever the principal cannot see the
// entity's board at all, so inaccessible entities are indistinguishable
// from missing ones.
type Decision int

const (
	Allow Decision = iota
	Forbidden
	NotFound
)

func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	}
	return "unknown"
}

// Owned is implemented by entities that can name a single owning user:
// a board names its owner, a ticket its creator, a comment its author.
type Owned interface {
	OwnerIdentity() uuid.UUID
}

// IsOwner is the generic ownership check for heterogeneous entities.
// An entity whose owner reference has been cleared matches no one.
func IsOwner(principal uuid.UUID, entity Owned) bool {
	owner := entity.OwnerIdentity()
	return owner != uuid.Nil && owner == principal
}
