package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "github", cfg.Archive.Backend)
	assert.Equal(t, "github_files", cfg.Archive.Directory)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 604800, cfg.Auth.TokenMaxAge)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9999"

[archive]
backend = "local"
local_path = "/srv/docs"

[database]
driver = "pgx"
dsn = "postgres://localhost/osmtm"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "local", cfg.Archive.Backend)
	assert.Equal(t, "/srv/docs", cfg.Archive.LocalPath)
	assert.Equal(t, "pgx", cfg.Database.Driver)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIKI_API_ENDPOINT", "https://wiki.example/api.php")
	t.Setenv("MEDIAWIKI_BOT_NAME", "bot")
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example/api.php", cfg.Wiki.Endpoint)
	assert.Equal(t, "bot", cfg.Wiki.BotName)
	assert.Equal(t, "tok", cfg.Archive.Token)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.Secret = "x"

	// github backend without repo/token.
	assert.Error(t, cfg.Validate())

	cfg.Archive.Repository = "hotosm/docs"
	cfg.Archive.Token = "tok"
	assert.NoError(t, cfg.Validate())

	cfg.Archive.Backend = "local"
	assert.Error(t, cfg.Validate())
	cfg.Archive.LocalPath = t.TempDir()
	assert.NoError(t, cfg.Validate())

	cfg.Archive.Backend = "ftp"
	assert.Error(t, cfg.Validate())

	cfg.Archive.Backend = "local"
	cfg.Auth.Secret = ""
	assert.Error(t, cfg.Validate())
}
