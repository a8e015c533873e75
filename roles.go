package portal

// Role is a portal role stored in user_roles.
type Role string

const (
	// RoleAdmin can manage articles in the CMS.
	RoleAdmin Role = "admin"
	// RoleUser is the implicit role of every signed in identity.
	RoleUser Role = "user"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}
