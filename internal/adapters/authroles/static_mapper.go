// Package authroles maps identity provider groups to caller user types.
package authroles

import "github.com/target/vms-jobdist/internal/domain/model"

// StaticUserTypeMapper maps groups by simple string membership rules. The
// most privileged matching group wins.
type StaticUserTypeMapper struct {
	SuperUserGroup string
	MSPGroup       string
	ClientGroup    string
	VendorGroup    string
}

// Map returns the user type for groups, or an empty type when none match.
func (m StaticUserTypeMapper) Map(groups []string) model.UserType {
	rules := []struct {
		group string
		typ   model.UserType
	}{
		{m.SuperUserGroup, model.UserTypeSuperUser},
		{m.MSPGroup, model.UserTypeMSP},
		{m.ClientGroup, model.UserTypeClient},
		{m.VendorGroup, model.UserTypeVendor},
	}
	for _, r := range rules {
		if r.group == "" {
			continue
		}
		for _, g := range groups {
			if g == r.group {
				return r.typ
			}
		}
	}
	return ""
}
