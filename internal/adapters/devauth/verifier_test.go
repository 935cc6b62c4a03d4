package devauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/vms-jobdist/internal/domain/model"
)

func TestNewVerifier_Validation(t *testing.T) {
	_, err := NewVerifier(Config{Subject: "u-1"})
	require.Error(t, err)
	_, err = NewVerifier(Config{Token: "t"})
	require.Error(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(Config{
		Token:             "dev-token",
		Subject:           "u-1",
		UserType:          "Super User",
		PreferredUsername: "dev",
	})
	require.NoError(t, err)

	actor, err := v.Verify(context.Background(), "dev-token")
	require.NoError(t, err)
	assert.Equal(t, &model.Actor{
		Subject:           "u-1",
		UserType:          model.UserTypeSuperUser,
		PreferredUsername: "dev",
		Token:             "dev-token",
	}, actor)

	_, err = v.Verify(context.Background(), "dev-token2")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = v.Verify(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidToken)
}
