package models

// AdminRole is the role name granting full management rights.
const AdminRole = "Admin"

// UserContext carries the authenticated caller's identity as supplied by the
// external identity provider. Users are not persisted locally; the provider's
// stable subject identifier and role memberships are all the application needs.
type UserContext struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u UserContext) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == AdminRole {
			return true
		}
	}
	return false
}
