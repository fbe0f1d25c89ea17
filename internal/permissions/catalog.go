package permissions

// Permission identifiers gating administrative operations.
const (
	AdsView    = "ads.view"
	AdsApprove = "ads.approve"
	AdsReject  = "ads.reject"
	// AdsEdit also gates suspend and unsuspend; there is no dedicated
	// ads.suspend permission.
	AdsEdit   = "ads.edit"
	AdsDelete = "ads.delete"

	UsersView    = "users.view"
	UsersEdit    = "users.edit"
	UsersSuspend = "users.suspend"

	ReportsView   = "reports.view"
	ReportsManage = "reports.manage"

	CategoriesManage = "categories.manage"

	PermissionsView   = "permissions.view"
	PermissionsManage = "permissions.manage"

	AuditView = "audit.view"
)

func init() {
	perms := []*Permission{
		{ID: AdsView, Description: "View ads in every status, including moderation history"},
		{ID: AdsApprove, Description: "Approve ads pending moderation"},
		{ID: AdsReject, Description: "Reject ads pending moderation"},
		{ID: AdsEdit, Description: "Edit any ad and suspend or unsuspend approved ads"},
		{ID: AdsDelete, Description: "Delete any ad"},
		{ID: UsersView, Description: "View user accounts"},
		{ID: UsersEdit, Description: "Edit user accounts"},
		{ID: UsersSuspend, Description: "Suspend and reactivate user accounts"},
		{ID: ReportsView, Description: "View reports filed against ads and messages"},
		{ID: ReportsManage, Description: "Review, resolve and dismiss reports"},
		{ID: CategoriesManage, Description: "Create and edit categories"},
		{ID: PermissionsView, Description: "View permission grants"},
		{ID: PermissionsManage, Description: "Grant and revoke permissions"},
		{ID: AuditView, Description: "View the audit log"},
	}

	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}
