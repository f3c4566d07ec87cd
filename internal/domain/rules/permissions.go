package rules

import "github.com/morlov/merchant-admin/internal/domain/enums"

// PermissionSet is the fixed capability grid an authenticated role carries.
// It never changes at runtime.
type PermissionSet struct {
	ViewUsers       bool
	CreateUsers     bool
	UpdateUsers     bool
	DeleteUsers     bool
	ViewMerchants   bool
	CreateMerchants bool
	UpdateMerchants bool
	DeleteMerchants bool

	// ViewAllMerchants widens merchant reads beyond the caller's own record.
	ViewAllMerchants bool
}

var permissionTable = map[enums.Role]PermissionSet{
	enums.RoleSuperAdmin: {
		ViewUsers:        true,
		CreateUsers:      true,
		UpdateUsers:      true,
		DeleteUsers:      true,
		ViewMerchants:    true,
		CreateMerchants:  true,
		UpdateMerchants:  true,
		DeleteMerchants:  true,
		ViewAllMerchants: true,
	},
	enums.RoleAdmin: {
		ViewMerchants:    true,
		CreateMerchants:  true,
		UpdateMerchants:  true,
		DeleteMerchants:  true,
		ViewAllMerchants: true,
	},
	enums.RoleMerchant: {
		ViewMerchants: true,
	},
}

// PermissionsFor returns the capability set for a role. Unknown roles get the
// merchant set, the narrowest one in the table.
func PermissionsFor(role enums.Role) PermissionSet {
	if set, ok := permissionTable[role]; ok {
		return set
	}
	return permissionTable[enums.RoleMerchant]
}
