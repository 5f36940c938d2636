package roles

import "codmsocial-backend/internal/pkg/constants"

// PermissionSet is the fixed capability record derived from a role.
type PermissionSet struct {
	CanInviteMembers            bool `json:"canInviteMembers"`
	CanRemoveMembers            bool `json:"canRemoveMembers"`
	CanChangeRoles              bool `json:"canChangeRoles"`
	CanManageOrganization       bool `json:"canManageOrganization"`
	CanCreateEvents             bool `json:"canCreateEvents"`
	CanRegisterForEvents        bool `json:"canRegisterForEvents"`
	CanManageEventRegistrations bool `json:"canManageEventRegistrations"`
	CanViewEvents               bool `json:"canViewEvents"`
	CanViewOwnRosterStatus      bool `json:"canViewOwnRosterStatus"`
}

// Every enumerated role must have a row. Roles not in the table get the zero
// value, which denies everything.
var rolePermissions = map[constants.Role]PermissionSet{
	constants.Owner: {
		CanInviteMembers:            true,
		CanRemoveMembers:            true,
		CanChangeRoles:              true,
		CanManageOrganization:       true,
		CanCreateEvents:             true,
		CanRegisterForEvents:        true,
		CanManageEventRegistrations: true,
		CanViewEvents:               true,
		CanViewOwnRosterStatus:      true,
	},
	constants.Moderator: {
		CanInviteMembers:            true,
		CanRemoveMembers:            true,
		CanChangeRoles:              true,
		CanManageOrganization:       true,
		CanCreateEvents:             true,
		CanRegisterForEvents:        true,
		CanManageEventRegistrations: true,
		CanViewEvents:               true,
		CanViewOwnRosterStatus:      true,
	},
	constants.Manager: {
		CanInviteMembers:            true,
		CanRemoveMembers:            true,
		CanCreateEvents:             true,
		CanRegisterForEvents:        true,
		CanManageEventRegistrations: true,
		CanViewEvents:               true,
		CanViewOwnRosterStatus:      true,
	},
	constants.Pro: {
		CanViewEvents:          true,
		CanViewOwnRosterStatus: true,
	},
	constants.Ranked: {
		CanViewEvents:          true,
		CanViewOwnRosterStatus: true,
	},
}

// GetRolePermissions returns the permission row for role.
func GetRolePermissions(role constants.Role) PermissionSet {
	return rolePermissions[role]
}

// Has reports whether the set grants p. Unknown permissions are denied.
func (p PermissionSet) Has(perm constants.Permission) bool {
	switch perm {
	case constants.InviteMembers:
		return p.CanInviteMembers
	case constants.RemoveMembers:
		return p.CanRemoveMembers
	case constants.ChangeRoles:
		return p.CanChangeRoles
	case constants.ManageOrganization:
		return p.CanManageOrganization
	case constants.CreateEvents:
		return p.CanCreateEvents
	case constants.RegisterForEvents:
		return p.CanRegisterForEvents
	case constants.ManageEventRegistrations:
		return p.CanManageEventRegistrations
	case constants.ViewEvents:
		return p.CanViewEvents
	case constants.ViewOwnRosterStatus:
		return p.CanViewOwnRosterStatus
	}
	return false
}

// Can is shorthand for GetRolePermissions(role).Has(perm).
func Can(role constants.Role, perm constants.Permission) bool {
	return GetRolePermissions(role).Has(perm)
}
