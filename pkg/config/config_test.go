package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	require.NoError(t, Init(customConfigPath))

	assert.Equal(t, filepath.Join(tempDir, "custom", "path"), GetConfigDir())
	assert.Equal(t, customConfigPath, GetConfigFilePath())

	_, err := os.Stat(GetConfigDir())
	assert.NoError(t, err, "config directory should be created")
}

func TestGetCredentialsPath(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, Init(filepath.Join(tempDir, "config.toml")))

	credsPath := GetCredentialsPath()
	assert.True(t, filepath.IsAbs(credsPath))
	assert.Equal(t, "credentials", filepath.Base(credsPath))
}

func TestDefaults(t *testing.T) {
	require.NoError(t, Init(filepath.Join(t.TempDir(), "config.toml")))

	assert.Equal(t, "http://localhost:5000/api", GetString("api.base_url"))
	assert.Equal(t, 30, GetInt("api.timeout"))
	assert.Equal(t, "text", GetString("output.format"))
	assert.Equal(t, 2*time.Minute, GetDuration("cache.stale_time"))
	assert.Equal(t, 10*time.Minute, GetDuration("cache.profile_stale_time"))
	assert.Equal(t, 10, GetInt("pagination.page_size"))
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")
	content := "[api]\nbase_url = \"https://sal.example.com/api\"\ntimeout = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	require.NoError(t, Init(path))

	assert.Equal(t, "https://sal.example.com/api", GetString("api.base_url"))
	assert.Equal(t, 5, GetInt("api.timeout"))
	// untouched keys keep their defaults
	assert.Equal(t, "text", GetString("output.format"))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("SAL_API_BASE_URL", "http://env.example.com/api")
	require.NoError(t, Init(filepath.Join(t.TempDir(), "config.toml")))

	assert.Equal(t, "http://env.example.com/api", GetString("api.base_url"))
}

func TestOverrideDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Init(path))

	Override("output.format", "json")
	assert.Equal(t, "json", GetString("output.format"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Override must not write the config file")
}

func TestSetStringPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Init(path))

	require.NoError(t, SetString("api.base_url", "https://saved.example.com/api"))

	require.NoError(t, Init(path))
	assert.Equal(t, "https://saved.example.com/api", GetString("api.base_url"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs"), expandPath("~/logs"))
	assert.Equal(t, "/var/log/sal.log", expandPath("/var/log/sal.log"))
	assert.Equal(t, "", expandPath(""))
}
