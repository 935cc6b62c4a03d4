// Package oidc verifies bearer id-tokens against an OpenID Connect issuer.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// GroupMapper derives a user type from group membership when the token
// carries no user type claim.
type GroupMapper interface {
	Map(groups []string) model.UserType
}

// VerifierConfig holds configuration for the OIDC verifier.
type VerifierConfig struct {
	ClientID     string
	DiscoveryURL string
	// SkipClientIDCheck accepts tokens minted for other audiences of the issuer.
	SkipClientIDCheck bool
	// UserTypeClaim names the claim carrying the user type. Defaults to "user_type".
	UserTypeClaim string
	Groups        GroupMapper  // Optional
	HTTPClient    *http.Client // Optional, defaults to a 30s timeout client
}

const defaultUserTypeClaim = "user_type"

// Verifier implements core.TokenVerifier with go-oidc.
type Verifier struct {
	verifier      *gooidc.IDTokenVerifier
	userTypeClaim string
	groups        GroupMapper
}

// NewVerifier discovers the issuer and builds a verifier.
func NewVerifier(ctx context.Context, cfg VerifierConfig) (*Verifier, error) {
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if cfg.ClientID == "" && !cfg.SkipClientIDCheck {
		return nil, errors.New("client ID is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// go-oidc fetches discovery and keys with the client stored under oauth2.HTTPClient.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	v := NewVerifierFrom(op.Verifier(&gooidc.Config{
		ClientID:          cfg.ClientID,
		SkipClientIDCheck: cfg.SkipClientIDCheck,
	}), cfg)
	return v, nil
}

// NewVerifierFrom wraps an already configured go-oidc verifier, such
// as one built over a static key set.
func NewVerifierFrom(idv *gooidc.IDTokenVerifier, cfg VerifierConfig) *Verifier {
	claim := cfg.UserTypeClaim
	if claim == "" {
		claim = defaultUserTypeClaim
	}
	return &Verifier{verifier: idv, userTypeClaim: claim, groups: cfg.Groups}
}

// tokenClaims represents a superset of OIDC and AD/ADFS claim shapes.
type tokenClaims struct {
	Sub               string   `json:"sub"`
	SamAccountName    string   `json:"samaccountname"`
	PreferredUsername string   `json:"preferred_username"`
	Groups            []string `json:"groups"`
	MemberOf          []string `json:"memberof"`
}

// Verify checks the token signature, issuer, audience and expiry and maps
// its claims to an actor.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*model.Actor, error) {
	tok, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	var claims tokenClaims
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}
	var raw map[string]any
	if err := tok.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}
	userType, _ := raw[v.userTypeClaim].(string)
	actor := mapClaims(claims, userType, v.groups)
	if actor.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	actor.Token = rawToken
	return &actor, nil
}

func mapClaims(c tokenClaims, userType string, groups GroupMapper) model.Actor {
	actor := model.Actor{
		Subject:           firstNonEmpty(c.Sub, c.SamAccountName),
		PreferredUsername: firstNonEmpty(c.PreferredUsername, c.SamAccountName),
	}
	if userType != "" {
		actor.UserType = model.ParseUserType(userType)
	} else if groups != nil {
		actor.UserType = groups.Map(append(c.Groups, c.MemberOf...))
	}
	return actor
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
