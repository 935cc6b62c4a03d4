package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/vms-jobdist/config"
	"github.com/target/vms-jobdist/internal/adapters/authroles"
	"github.com/target/vms-jobdist/internal/adapters/devauth"
	"github.com/target/vms-jobdist/internal/adapters/oidc"
	"github.com/target/vms-jobdist/internal/core"
)

// AuthConfig contains configuration for bearer token verification.
type AuthConfig struct {
	Auth   config.AuthConfig
	IsDev  bool
	Logger *slog.Logger
}

// BuildVerifier creates the token verifier for the configured auth mode.
//
//nolint:ireturn // callers choose between OIDC and static verifiers at runtime.
func BuildVerifier(ctx context.Context, cfg AuthConfig) (core.TokenVerifier, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeStatic:
		return buildStaticVerifier(cfg, logger)
	case config.AuthModeOIDC, "":
		return buildOIDCVerifier(ctx, cfg.Auth.OIDC)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildStaticVerifier(cfg AuthConfig, logger *slog.Logger) (*devauth.Verifier, error) {
	if !cfg.IsDev {
		return nil, errors.New("static auth mode is only allowed in development")
	}
	logger.Warn("static bearer token auth enabled; do not use outside development",
		"subject", cfg.Auth.Static.Subject,
		"user_type", cfg.Auth.Static.UserType,
	)
	v, err := devauth.NewVerifier(devauth.Config{
		Token:             cfg.Auth.Static.Token,
		Subject:           cfg.Auth.Static.Subject,
		UserType:          cfg.Auth.Static.UserType,
		PreferredUsername: cfg.Auth.Static.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("create static verifier: %w", err)
	}
	return v, nil
}

func buildOIDCVerifier(ctx context.Context, cfg config.OIDCConfig) (*oidc.Verifier, error) {
	if cfg.IssuerURL == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("oidc auth requires issuer url and client id (issuer_url_empty=%t, client_id_empty=%t)",
			cfg.IssuerURL == "", cfg.ClientID == "")
	}
	v, err := oidc.NewVerifier(ctx, oidc.VerifierConfig{
		ClientID:      cfg.ClientID,
		DiscoveryURL:  cfg.IssuerURL,
		UserTypeClaim: cfg.UserTypeClaim,
		Groups: authroles.StaticUserTypeMapper{
			SuperUserGroup: cfg.SuperUserGroup,
			MSPGroup:       cfg.MSPGroup,
			ClientGroup:    cfg.ClientGroup,
			VendorGroup:    cfg.VendorGroup,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create oidc verifier: %w", err)
	}
	return v, nil
}
