package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptflow/promptflow/internal/config"
)

func TestConfigPath(t *testing.T) {
	home := isolate(t)

	stdout, _, err := execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".promptflow", "config.yaml"), strings.TrimSpace(stdout))

	custom := filepath.Join(home, "other.yaml")
	stdout, _, err = execute(t, "", "--config", custom, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, custom, strings.TrimSpace(stdout))
}

func TestConfigSetServer(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".promptflow", "config.yaml")

	stdout, _, err := execute(t, "", "config", "set-server", "https://flow.example.com/api")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Server URL updated to: https://flow.example.com/api")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://flow.example.com/api", cfg.ServerURL)

	_, _, err = execute(t, "", "config", "set-server", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server URL")
}

func TestConfigShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".promptflow", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("server_url: https://file.example.com/api\ntimeout: 10s\n"), 0644))

	stdout, _, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Current Configuration:")
	assert.Contains(t, stdout, "https://file.example.com/api")
	assert.Contains(t, stdout, "10s")
	assert.Contains(t, stdout, "(stored credentials)")
}

func TestConfigPrecedence(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".promptflow", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("server_url: https://file.example.com/api\n"), 0644))

	t.Setenv("PROMPTFLOW_SERVER_URL", "https://env.example.com/api")
	stdout, _, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://env.example.com/api")

	stdout, _, err = execute(t, "", "--server", "https://flag.example.com/api", "--token", "abcdefghijklmnop", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://flag.example.com/api")
	assert.Contains(t, stdout, "abcd...mnop (override)")
}
