package policy

import "github.com/google/uuid"

// BoardWritePolicy selects who may edit a board's title, description
// and member list. Deleting a board is always owner-only.
type BoardWritePolicy int

const (
	// BoardWriteOwnerOrMember lets any board-accessible user edit the board.
	BoardWriteOwnerOrMember BoardWritePolicy = iota
	// BoardWriteOwnerOnly restricts board edits to the owner.
	BoardWriteOwnerOnly
)

// Engine decides whether a principal may perform an action on an
// entity. It is a pure function over snapshots of the entity's fields;
// callers resolve board accessibility beforehand and pass it in.
type Engine struct {
	BoardWrite BoardWritePolicy
}

func NewEngine() *Engine {
	return &Engine{BoardWrite: BoardWriteOwnerOrMember}
}

// Board decides an action on a board. accessible reports whether the
// principal is the owner or a member.
func (e *Engine) Board(principal uuid.UUID, action Action, board Owned, accessible bool) Decision {
	if !accessible {
		return NotFound
	}
	switch action {
	case ActionRead:
		return Allow
	case ActionWrite:
		if e.BoardWrite == BoardWriteOwnerOnly && !IsOwner(principal, board) {
			return Forbidden
		}
		return Allow
	case ActionDelete:
		if !IsOwner(principal, board) {
			return Forbidden
		}
		return Allow
	}
	return Forbidden
}

// Ticket decides an action on a ticket. Every action is gated on board
// access alone: creating, editing and deleting tickets is open to any
// board-accessible user regardless of who created them.
func (e *Engine) Ticket(principal uuid.UUID, action Action, accessible bool) Decision {
	if !accessible {
		return NotFound
	}
	return Allow
}

// Subticket decides an action on a subticket. Subtickets carry no
// authorization of their own beyond reaching the parent ticket's board.
func (e *Engine) Subticket(principal uuid.UUID, action Action, accessible bool) Decision {
	return e.Ticket(principal, action, accessible)
}

// Comment decides an action on a comment. Reads follow board access;
// edits and deletes additionally require authorship. The order matters:
// a principal outside the board gets NotFound, a board-accessible
// non-author gets Forbidden.
func (e *Engine) Comment(principal uuid.UUID, action Action, comment Owned, accessible bool) Decision {
	if !accessible {
		return NotFound
	}
	if action == ActionRead {
		return Allow
	}
	if !IsOwner(principal, comment) {
		return Forbidden
	}
	return Allow
}
