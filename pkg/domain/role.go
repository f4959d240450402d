package domain

// Role is the coarse access level carried in the access token. The service
// only distinguishes ordinary users from moderators/admins.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants moderation privileges.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// ParseRole normalizes a raw claim value, defaulting unknown values to user.
func ParseRole(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}
