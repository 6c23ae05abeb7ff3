package types

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

const (
	RoleAdmin        = "admin"
	RoleStockManager = "stock_manager"
	RoleStaff        = "staff"
)

// ValidRoles lists every role a user may hold.
var ValidRoles = []string{RoleAdmin, RoleStockManager, RoleStaff}

// ElevatedRoles require administrator approval at registration.
var ElevatedRoles = []string{RoleAdmin, RoleStockManager}

// RoleList is a set of role names stored as a comma separated column.
type RoleList []string

func (r RoleList) Value() (driver.Value, error) {
	return strings.Join(r.Normalize(), ","), nil
}

func (r *RoleList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*r = RoleList{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot convert %v to RoleList", value)
	}

	list := RoleList{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	*r = list
	return nil
}

// Normalize returns the roles lower-cased, de-duplicated and sorted.
func (r RoleList) Normalize() RoleList {
	out := RoleList{}
	for _, role := range r {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" && !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	sort.Strings(out)
	return out
}

func (r RoleList) Has(role string) bool {
	return slices.Contains(r, role)
}

// HasAny reports whether the list shares at least one role with required.
func (r RoleList) HasAny(required ...string) bool {
	return slices.ContainsFunc(r, func(role string) bool {
		return slices.Contains(required, role)
	})
}

// Invalid returns the roles that are not part of ValidRoles.
func (r RoleList) Invalid() []string {
	var bad []string
	for _, role := range r.Normalize() {
		if !slices.Contains(ValidRoles, role) {
			bad = append(bad, role)
		}
	}
	return bad
}

// IsElevated reports whether the list asks for admin or stock_manager.
func (r RoleList) IsElevated() bool {
	return r.Normalize().HasAny(ElevatedRoles...)
}
