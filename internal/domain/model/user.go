package model

import (
	"strings"
	"time"

	"psjudge_frontend/internal/common"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleJudge   Role = "judge"
	RoleStudent Role = "student"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleJudge, RoleStudent:
		return Role(s), nil
	default:
		return "", common.Errorf("unknown user role %q: %w", s, common.ErrValidation)
	}
}

// RoleSet is the set of roles carried by a user or a session. The underlying
// slice keeps database order; membership checks are set semantics.
type RoleSet []Role

func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

func (rs RoleSet) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// ParseRoleSet parses the comma-separated roles column, e.g. "admin,student".
func ParseRoleSet(s string) (RoleSet, error) {
	var set RoleSet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, err := ParseRole(part)
		if err != nil {
			return nil, err
		}
		if !set.Has(role) {
			set = append(set, role)
		}
	}
	return set, nil
}

// RoleSetFromStrings builds a RoleSet from decoded session claims.
func RoleSetFromStrings(values []string) (RoleSet, error) {
	var set RoleSet
	for _, v := range values {
		role, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		if !set.Has(role) {
			set = append(set, role)
		}
	}
	return set, nil
}

type User struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	HashedPassword  string    `json:"-"` // Not exposed
	Roles           RoleSet   `json:"roles"`
	ActiveContestID int       `json:"active_contest_id"`
	CreatedAt       time.Time `json:"created_at"`
}
