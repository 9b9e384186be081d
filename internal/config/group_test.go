package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGroupDefaults(t *testing.T) {
	group, err := LoadGroup("")
	require.NoError(t, err)
	assert.Zero(t, group.RoundSize)
	assert.Equal(t, "Braas", group.Aliases["brass"])
	assert.Equal(t, "Joess", group.Aliases["willie"])
}

func TestLoadGroupMissingFileKeepsDefaults(t *testing.T) {
	group, err := LoadGroup(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultGroup(), group)
}

func TestLoadGroupMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.yaml")
	content := "round_size: 8\naliases:\n  donny: Donald\n  brass: Brass\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	group, err := LoadGroup(path)
	require.NoError(t, err)
	assert.Equal(t, 8, group.RoundSize)
	assert.Equal(t, "Donald", group.Aliases["donny"])
	// File entries win over built-ins.
	assert.Equal(t, "Brass", group.Aliases["brass"])
	// Untouched defaults survive.
	assert.Equal(t, "Joess", group.Aliases["joess"])
}

func TestLoadGroupRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t:"), 0o600))

	_, err := LoadGroup(path)
	assert.Error(t, err)
}
