package enums

import "fmt"

// MemberRole distinguishes regular patrons from library administrators.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

func (r MemberRole) String() string {
	return string(r)
}

func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleMember, MemberRoleAdmin:
		return true
	}
	return false
}

func (r MemberRole) IsAdmin() bool {
	return r == MemberRoleAdmin
}

// ParseMemberRole validates a raw role string.
func ParseMemberRole(raw string) (MemberRole, error) {
	role := MemberRole(raw)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid member role %q", raw)
	}
	return role, nil
}

// RoleFor maps the persisted admin flag to a role.
func RoleFor(isAdmin bool) MemberRole {
	if isAdmin {
		return MemberRoleAdmin
	}
	return MemberRoleMember
}
