// Package datatypes defines shared closed enums (e.g. chat message roles).
package datatypes

import (
	"errors"
	"fmt"
)

// ErrInvalidRole is returned when a string is not one of the known chat roles.
var ErrInvalidRole = errors.New("invalid chat role")

// Role is the author of a chat message. The zero value is not a valid role.
type Role uint8

// Role constants; string form is given in roleMap.
const (
	RoleSystem Role = iota + 1
	RoleUser
	RoleAssistant
)

// roleMap is the single source of truth for valid role strings.
var roleMap = map[string]Role{
	"system":    RoleSystem,
	"user":      RoleUser,
	"assistant": RoleAssistant,
}

var reverseRoleMap map[Role]string

func init() {
	reverseRoleMap = make(map[Role]string, len(roleMap))
	for str, role := range roleMap {
		reverseRoleMap[role] = str
	}
}

// String returns the wire form of the role, or "" for an invalid role.
func (r Role) String() string {
	return reverseRoleMap[r]
}

// Valid reports whether r is one of RoleSystem, RoleUser, RoleAssistant.
func (r Role) Valid() bool {
	_, ok := reverseRoleMap[r]

	return ok
}

// ParseRole converts a wire string to a Role.
func ParseRole(s string) (Role, error) {
	role, ok := roleMap[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}

	return role, nil
}

// RoleStrings returns every valid role string in declaration order.
func RoleStrings() []string {
	return []string{RoleSystem.String(), RoleUser.String(), RoleAssistant.String()}
}

// MarshalText implements encoding.TextMarshaler so roles serialize as strings in JSON.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}

	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; unknown roles are rejected.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}

	*r = role

	return nil
}
