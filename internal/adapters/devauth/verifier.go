// Package devauth accepts a single configured bearer token for local
// development.
package devauth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/target/vms-jobdist/internal/domain/model"
)

// ErrInvalidToken is returned for any token other than the configured one.
var ErrInvalidToken = errors.New("invalid token")

// Config describes the fixed identity returned for the configured token.
type Config struct {
	Token             string
	Subject           string
	UserType          string
	PreferredUsername string
}

// Verifier implements core.TokenVerifier with a static token.
type Verifier struct {
	cfg Config
}

// NewVerifier creates a static verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("token is required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("subject is required")
	}
	return &Verifier{cfg: cfg}, nil
}

// Verify returns the configured actor when rawToken matches.
func (v *Verifier) Verify(_ context.Context, rawToken string) (*model.Actor, error) {
	if subtle.ConstantTimeCompare([]byte(rawToken), []byte(v.cfg.Token)) != 1 {
		return nil, ErrInvalidToken
	}
	return &model.Actor{
		Subject:           v.cfg.Subject,
		UserType:          model.ParseUserType(v.cfg.UserType),
		PreferredUsername: v.cfg.PreferredUsername,
		Token:             rawToken,
	}, nil
}
