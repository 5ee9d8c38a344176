package policy

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FieldErrors maps a field name to its validation messages, rendered by
// the HTTP layer as a 400 response body.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Error renders the map in field order so the message is stable.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(strings.Join(e[field], ", "))
	}
	return b.String()
}

// MemberSet is a board's accessible-user set: the owner plus members.
type MemberSet map[uuid.UUID]struct{}

func NewMemberSet(ownerID uuid.UUID, memberIDs []uuid.UUID) MemberSet {
	set := make(MemberSet, len(memberIDs)+1)
	set[ownerID] = struct{}{}
	for _, id := range memberIDs {
		set[id] = struct{}{}
	}
	return set
}

func (s MemberSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

const notAMember = "must be a board member"

// ValidateTicketMembers checks that every user referenced by a ticket's
// assignment fields is in the board's accessible-user set, as read at
// the start of the update transaction. Each offending field gets its
// own entry; nil references are fine.
func ValidateTicketMembers(set MemberSet, assignee, reviewer *uuid.UUID, assignedTo []uuid.UUID) FieldErrors {
	errs := FieldErrors{}
	if assignee != nil && !set.Contains(*assignee) {
		errs.Add("assignee", notAMember)
	}
	if reviewer != nil && !set.Contains(*reviewer) {
		errs.Add("reviewer", notAMember)
	}
	for _, id := range assignedTo {
		if !set.Contains(id) {
			errs.Add("assigned_to", notAMember)
			break
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
