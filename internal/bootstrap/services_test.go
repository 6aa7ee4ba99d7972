package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardly/ledger-api/config"
)

func testAppConfig(mode config.AuthMode) *config.AppConfig {
	return &config.AppConfig{
		Auth: config.AuthConfig{
			Mode:       mode,
			AdminEmail: "admin@example.org",
			DevAuth:    config.DevAuthConfig{IdentityID: "dev-user", Email: "dev@example.com"},
		},
	}
}

func TestNewServicesRequiresDeps(t *testing.T) {
	_, err := NewServices(nil)
	assert.Error(t, err)
}

func TestNewServicesPasswordMode(t *testing.T) {
	container, err := NewServices(&ServiceDeps{Config: testAppConfig(config.AuthModePassword)})
	require.NoError(t, err)

	assert.NotNil(t, container.Sessions)
	assert.NotNil(t, container.Users)
	assert.NotNil(t, container.Profiles)
	assert.NotNil(t, container.Transactions)
	assert.NotNil(t, container.Inventory)
	assert.NotNil(t, container.Dashboard)
	assert.Nil(t, container.Tracker)
	assert.Nil(t, container.Identity.SSO)
	assert.NotNil(t, container.Identity.Credentials)
}

func TestNewServicesMockModeBuildsTracker(t *testing.T) {
	container, err := NewServices(&ServiceDeps{Config: testAppConfig(config.AuthModeMock)})
	require.NoError(t, err)

	assert.True(t, container.Identity.Mock)
	require.NotNil(t, container.Tracker)

	// The seeded dev identity signs in at startup, so the tracker's
	// first published state is already authenticated once started.
	assert.NotNil(t, container.Sessions)
}

func TestStartHTTPServerNilConfig(t *testing.T) {
	assert.Nil(t, StartHTTPServer(nil))
}

func TestShutdownHTTPServerNilServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}
