package enums

import "testing"

func TestParseRoleNormalizesKnownValues(t *testing.T) {
	cases := []struct {
		raw  string
		want Role
		ok   bool
	}{
		{"super_admin", RoleSuperAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{"  merchant ", RoleMerchant, true},
		{"owner", Role("owner"), false},
		{"", Role(""), false},
	}

	for _, tc := range cases {
		got, ok := ParseRole(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValidRequiresExactSpelling(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleMerchant} {
		if !role.Valid() {
			t.Fatalf("%q must be valid", role)
		}
	}
	for _, role := range []Role{Role("ADMIN"), Role("Admin"), Role(" admin"), Role("owner"), Role("")} {
		if role.Valid() {
			t.Fatalf("%q must not be valid without normalization", role)
		}
	}
}
