package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/vms-jobdist/internal/domain/model"
)

func TestStaticUserTypeMapper(t *testing.T) {
	m := StaticUserTypeMapper{
		SuperUserGroup: "vms-admins",
		MSPGroup:       "vms-msp",
		ClientGroup:    "vms-clients",
		VendorGroup:    "vms-vendors",
	}

	assert.Equal(t, model.UserTypeVendor, m.Map([]string{"everyone", "vms-vendors"}))
	assert.Equal(t, model.UserTypeSuperUser, m.Map([]string{"vms-vendors", "vms-admins"}))
	assert.Equal(t, model.UserTypeMSP, m.Map([]string{"vms-msp"}))
	assert.Equal(t, model.UserType(""), m.Map([]string{"everyone"}))
	assert.Equal(t, model.UserType(""), StaticUserTypeMapper{}.Map([]string{""}))
}
