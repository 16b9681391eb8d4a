// Package access centralizes the ownership policy applied to every read and
// write in the application: records are visible to their owner, and admins
// see everything. Services take the acting identity as an explicit parameter
// instead of reading ambient session state.
package access

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is an application role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSDR    Role = "sdr"
	RoleCloser Role = "closer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSDR, RoleCloser:
		return true
	}
	return false
}

// Actor is the acting authenticated identity, passed explicitly through
// every service and repository call.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the actor may bypass ownership filtering.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanActOn reports whether the actor may read or mutate a record owned by
// ownerID. Admins may act on any record.
func (a Actor) CanActOn(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

// OwnerClause returns a SQL predicate fragment (and its argument) that scopes
// a query to rows owned by the actor, keyed on the given column. Admins get
// an empty clause. argPos is the 1-based position the argument placeholder
// should use.
//
// Usage:
//
//	clause, args := access.OwnerClause(actor, "l.owner_id", 2)
//	query := baseQuery + clause
func OwnerClause(a Actor, column string, argPos int) (string, []any) {
	if a.IsAdmin() {
		return "", nil
	}
	return fmt.Sprintf(" AND %s = $%d", column, argPos), []any{a.ID}
}
