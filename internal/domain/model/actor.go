package model

import "strings"

// UserType classifies the caller behind a bearer token.
type UserType string

const (
	UserTypeVendor    UserType = "vendor"
	UserTypeClient    UserType = "client"
	UserTypeMSP       UserType = "msp"
	UserTypeSuperUser UserType = "super_user"
)

// ParseUserType normalizes claim values such as "MSP" or "Super User".
func ParseUserType(s string) UserType {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	return UserType(v)
}

// Actor is the identity decoded from a bearer token.
type Actor struct {
	Subject           string   `json:"sub"`
	UserType          UserType `json:"user_type"`
	PreferredUsername string   `json:"preferred_username"`
	// Token is the raw bearer token the actor was decoded from.
	Token string `json:"-"`
}

// IsVendor reports whether the actor acts for a vendor.
func (a *Actor) IsVendor() bool { return a != nil && a.UserType == UserTypeVendor }

// IsProgramManager reports whether the actor is a client, MSP or super user.
func (a *Actor) IsProgramManager() bool {
	if a == nil {
		return false
	}
	switch a.UserType {
	case UserTypeClient, UserTypeMSP, UserTypeSuperUser:
		return true
	default:
		return false
	}
}
