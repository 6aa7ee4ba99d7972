package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistry(t *testing.T) {
	cmds := commands()

	for _, name := range []string{"migrate", "list-users", "approve", "deny", "set-role", "seed"} {
		cmd, ok := cmds[name]
		require.True(t, ok, "missing command %q", name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writef(&buf, "%s=%d", "count", 3))
	assert.Equal(t, "count=3", buf.String())
}
