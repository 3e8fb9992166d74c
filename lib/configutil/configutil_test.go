package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name"`
	Port    int               `json:"port"`
	Headers map[string]string `json:"headers"`
}

func TestLocalOverridePath(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalOverridePath("config.json5"))
	require.Equal(t, filepath.Join("a", "b", "x.local.json"), LocalOverridePath("a/b/x.json"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](base)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = os.WriteFile(base, []byte(`{
		// comments are allowed
		name: "server",
		port: 8000,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "server", cfg.Name)
	require.Equal(t, 8000, cfg.Port)

	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{port: 9000}`), 0600)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "server", cfg.Name)
	require.Equal(t, 9000, cfg.Port)
}
