package constants

// Permission names one capability of a role inside an organization.
type Permission string

const (
	InviteMembers            Permission = "invite_members"
	RemoveMembers            Permission = "remove_members"
	ChangeRoles              Permission = "change_roles"
	ManageOrganization       Permission = "manage_organization"
	CreateEvents             Permission = "create_events"
	RegisterForEvents        Permission = "register_for_events"
	ManageEventRegistrations Permission = "manage_event_registrations"
	ViewEvents               Permission = "view_events"
	ViewOwnRosterStatus      Permission = "view_own_roster_status"
)

// AllPermissions in the same order as the PermissionSet fields.
var AllPermissions = []Permission{
	InviteMembers,
	RemoveMembers,
	ChangeRoles,
	ManageOrganization,
	CreateEvents,
	RegisterForEvents,
	ManageEventRegistrations,
	ViewEvents,
	ViewOwnRosterStatus,
}
