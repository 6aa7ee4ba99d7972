package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardly/ledger-api/config"
	"github.com/stewardly/ledger-api/internal/data"
)

func TestBuildIdentityStackMockMode(t *testing.T) {
	stack, err := BuildIdentityStack(IdentityStackConfig{
		Auth: config.AuthConfig{
			Mode:    config.AuthModeMock,
			DevAuth: config.DevAuthConfig{IdentityID: "dev-user", Email: "dev@example.com"},
		},
	})
	require.NoError(t, err)

	assert.NotNil(t, stack.Source)
	assert.True(t, stack.Mock)
	assert.Nil(t, stack.SSO)
	assert.Nil(t, stack.Credentials)
}

func TestBuildIdentityStackPasswordMode(t *testing.T) {
	creds := data.NewIdentityRepo(nil)

	stack, err := BuildIdentityStack(IdentityStackConfig{
		Auth:        config.AuthConfig{Mode: config.AuthModePassword},
		Credentials: creds,
	})
	require.NoError(t, err)

	assert.NotNil(t, stack.Source)
	assert.False(t, stack.Mock)
	assert.Nil(t, stack.SSO)
	assert.NotNil(t, stack.Credentials)
}

func TestBuildIdentityStackPasswordModeRequiresCredentials(t *testing.T) {
	_, err := BuildIdentityStack(IdentityStackConfig{
		Auth: config.AuthConfig{Mode: config.AuthModePassword},
	})
	assert.Error(t, err)
}

func TestBuildIdentityStackOIDCIncompleteConfigDisablesSSO(t *testing.T) {
	stack, err := BuildIdentityStack(IdentityStackConfig{
		Auth: config.AuthConfig{
			Mode: config.AuthModeOIDC,
			OIDC: config.OIDCConfig{ClientID: "ledger"},
		},
		Credentials: data.NewIdentityRepo(nil),
	})
	require.NoError(t, err)

	assert.NotNil(t, stack.Source)
	assert.Nil(t, stack.SSO)
}

func TestBuildIdentityStackUnsupportedMode(t *testing.T) {
	_, err := BuildIdentityStack(IdentityStackConfig{
		Auth: config.AuthConfig{Mode: config.AuthMode("saml")},
	})
	assert.Error(t, err)
}
