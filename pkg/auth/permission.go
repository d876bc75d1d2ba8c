package auth

// Permission is an atomic capability token gating one mutating action.
// Tokens are flat "resource.action" strings with no hierarchy.
type Permission string

const (
	PermissionFlowsCreate  Permission = "flows.create"
	PermissionFlowsEdit    Permission = "flows.edit"
	PermissionFlowsDelete  Permission = "flows.delete"
	PermissionFlowsControl Permission = "flows.control"

	PermissionCampaignsCreate  Permission = "campaigns.create"
	PermissionCampaignsEdit    Permission = "campaigns.edit"
	PermissionCampaignsDelete  Permission = "campaigns.delete"
	PermissionCampaignsControl Permission = "campaigns.control"

	PermissionContactsCreate Permission = "contacts.create"
	PermissionContactsEdit   Permission = "contacts.edit"
	PermissionContactsDelete Permission = "contacts.delete"

	PermissionAudioUpload Permission = "audio.upload"
	PermissionAudioDelete Permission = "audio.delete"

	PermissionSettingsEdit Permission = "settings.edit"
)

// AllPermissions returns every known permission in stable order.
func AllPermissions() []Permission {
	return []Permission{
		PermissionFlowsCreate,
		PermissionFlowsEdit,
		PermissionFlowsDelete,
		PermissionFlowsControl,
		PermissionCampaignsCreate,
		PermissionCampaignsEdit,
		PermissionCampaignsDelete,
		PermissionCampaignsControl,
		PermissionContactsCreate,
		PermissionContactsEdit,
		PermissionContactsDelete,
		PermissionAudioUpload,
		PermissionAudioDelete,
		PermissionSettingsEdit,
	}
}

// rolePermissions is the deployment-fixed grant table. Operators and
// viewers are read only roles and hold no permissions; superusers
// bypass the table entirely.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: permissionSet(
		PermissionFlowsCreate,
		PermissionFlowsEdit,
		PermissionFlowsDelete,
		PermissionFlowsControl,
		PermissionCampaignsCreate,
		PermissionCampaignsEdit,
		PermissionCampaignsDelete,
		PermissionCampaignsControl,
		PermissionContactsCreate,
		PermissionContactsEdit,
		PermissionContactsDelete,
		PermissionAudioUpload,
		PermissionAudioDelete,
		PermissionSettingsEdit,
	),
	RoleManager: permissionSet(
		PermissionFlowsCreate,
		PermissionFlowsEdit,
		PermissionFlowsDelete,
		PermissionFlowsControl,
		PermissionCampaignsCreate,
		PermissionCampaignsEdit,
		PermissionCampaignsDelete,
		PermissionCampaignsControl,
		PermissionContactsCreate,
		PermissionContactsEdit,
		PermissionContactsDelete,
		PermissionAudioUpload,
		PermissionAudioDelete,
	),
	RoleOperator: permissionSet(),
	RoleViewer:   permissionSet(),
}

func permissionSet(permissions ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(permissions))
	for _, permission := range permissions {
		set[permission] = struct{}{}
	}

	return set
}
