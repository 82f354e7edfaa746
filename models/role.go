// role.go - Defines user roles and the allow-list used by the role gate

package models

import (
	"fmt"
	"strings"
)

// Role is the authorization role carried by a user and by its token claims.
type Role string

const (
	RoleOwner  Role = "OWNER"  // posts jobs and manages their applications
	RoleWorker Role = "WORKER" // applies to jobs
)

// ParseRole maps the wire value onto a known Role. Matching is exact: "owner" is rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleOwner, RoleWorker:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// RoleSet is an allow-list of roles used by the role gate.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles, ignoring anything that is not a declared role.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Allows reports whether r is in the set.
func (s RoleSet) Allows(r Role) bool {
	_, ok := s[r]
	return ok
}
