package enums

type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleManager       Role = "MANAGER"
	RoleSupport       Role = "SUPPORT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleSupport:
		return true
	}
	return false
}

// CanReassign reports whether the role may override another
// reviewer's claim.
func (r Role) CanReassign() bool {
	return r == RoleAdministrator || r == RoleManager
}

func (r Role) CanPurge() bool {
	return r == RoleAdministrator
}
