package config

import (
	"fmt"
	"strings"
)

// AuthMode selects how bearer tokens are verified.
type AuthMode string

const (
	// AuthModeOIDC verifies bearer tokens as OIDC ID tokens.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeStatic accepts one configured token and maps it to a fixed actor (development only).
	AuthModeStatic AuthMode = "static"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oidc", "static":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, static)", v)
	}
}

// OIDCConfig contains issuer settings for token verification.
type OIDCConfig struct {
	IssuerURL string `env:"ISSUER_URL"`
	ClientID  string `env:"CLIENT_ID" envDefault:"jobdist"`
	// UserTypeClaim names the claim carrying the actor's user type.
	UserTypeClaim string `env:"USER_TYPE_CLAIM" envDefault:"user_type"`
	// Group names used to derive the user type when the claim is absent.
	SuperUserGroup string `env:"SUPER_USER_GROUP"`
	MSPGroup       string `env:"MSP_GROUP"`
	ClientGroup    string `env:"CLIENT_GROUP"`
	VendorGroup    string `env:"VENDOR_GROUP"`
}

// StaticAuthConfig describes the fixed identity used when AUTH_MODE=static.
type StaticAuthConfig struct {
	Token    string `env:"TOKEN"     envDefault:"dev-token"`
	Subject  string `env:"SUBJECT"   envDefault:"00000000-0000-0000-0000-000000000001"`
	UserType string `env:"USER_TYPE" envDefault:"super_user"`
	Username string `env:"USERNAME"  envDefault:"dev"`
}

// AuthConfig groups authentication configuration.
type AuthConfig struct {
	Mode   AuthMode         `env:"AUTH_MODE" envDefault:"oidc"`
	OIDC   OIDCConfig       `envPrefix:"OIDC_"`
	Static StaticAuthConfig `envPrefix:"STATIC_AUTH_"`
}
