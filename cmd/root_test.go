package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestInitRuntimeHonorsConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  development: true\n"), 0o644))

	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	cfgFile = path
	initRuntime()

	require.Equal(t, path, viper.ConfigFileUsed())
	// The logger knob comes from the config file, so it must be readable
	// only after the config has been loaded.
	require.True(t, viper.GetBool("log.development"))
}

func TestInitRuntimeWithoutConfigFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfgFile = ""
	initRuntime()

	require.False(t, viper.GetBool("log.development"))
	require.Equal(t, 5, viper.GetInt("crawler.batch_size"))
}
