// Package config loads the server configuration from a TOML file with
// secrets supplied through the environment (optionally via a .env file).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Wiki     WikiConfig     `toml:"wiki"`
	Archive  ArchiveConfig  `toml:"archive"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// WikiConfig holds MediaWiki API settings. Bot credentials come from the
// environment, never the file.
type WikiConfig struct {
	Endpoint    string  `toml:"endpoint"`
	BotName     string  `toml:"-"`
	BotPassword string  `toml:"-"`
	RateLimit   float64 `toml:"rate_limit"` // requests per second
}

// ArchiveConfig selects and configures the document archive backend.
type ArchiveConfig struct {
	// Backend is "github", "gitlab", or "local".
	Backend string `toml:"backend"`

	Repository     string `toml:"repository"` // "owner/name" or GitLab project id
	Branch         string `toml:"branch"`
	Directory      string `toml:"directory"` // path prefix for document files
	CommitterName  string `toml:"committer_name"`
	CommitterEmail string `toml:"committer_email"`
	Token          string `toml:"-"` // GITHUB_TOKEN / GITLAB_TOKEN
	GitLabBaseURL  string `toml:"gitlab_base_url"`
	LocalPath      string `toml:"local_path"` // working tree for the local backend
}

// DatabaseConfig holds the relational store settings. Driver is any of the
// registered database/sql drivers: "sqlite", "pgx", "mysql".
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// AuthConfig holds session-token settings. The signing secret comes from
// the environment.
type AuthConfig struct {
	Secret      string `toml:"-"`
	TokenMaxAge int    `toml:"token_max_age"` // seconds
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Wiki: WikiConfig{
			Endpoint:  "https://wiki.openstreetmap.org/w/api.php",
			RateLimit: 2,
		},
		Archive: ArchiveConfig{
			Backend:   "github",
			Branch:    "master",
			Directory: "github_files",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "osmtm.db",
		},
		Auth: AuthConfig{
			TokenMaxAge: 604800, // one week, matching session token expiry
		},
	}
}

// Load reads the TOML file at path, layers it over the defaults, and pulls
// secrets from the environment. A missing file is not an error: defaults
// plus environment apply. A .env file in the working directory is loaded
// first when present.
func Load(path string) (*Config, error) {
	// Absent .env is fine; explicit load keeps the precedence obvious.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("loading config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setIfEnv(&c.Wiki.Endpoint, "WIKI_API_ENDPOINT")
	setIfEnv(&c.Wiki.BotName, "MEDIAWIKI_BOT_NAME")
	setIfEnv(&c.Wiki.BotPassword, "MEDIAWIKI_BOT_PASSWORD")
	setIfEnv(&c.Archive.Repository, "GITHUB_REPOSITORY")
	setIfEnv(&c.Archive.CommitterName, "GITHUB_COMMITER_NAME")
	setIfEnv(&c.Archive.CommitterEmail, "GITHUB_COMMITER_EMAIL")
	setIfEnv(&c.Auth.Secret, "SECRET_KEY")

	switch c.Archive.Backend {
	case "gitlab":
		setIfEnv(&c.Archive.Token, "GITLAB_TOKEN")
	default:
		setIfEnv(&c.Archive.Token, "GITHUB_TOKEN")
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports configuration errors that would only surface later as
// confusing API failures.
func (c *Config) Validate() error {
	switch c.Archive.Backend {
	case "github", "gitlab":
		if c.Archive.Repository == "" {
			return fmt.Errorf("archive backend %q requires a repository", c.Archive.Backend)
		}
		if c.Archive.Token == "" {
			return fmt.Errorf("archive backend %q requires an access token", c.Archive.Backend)
		}
	case "local":
		if c.Archive.LocalPath == "" {
			return fmt.Errorf("archive backend \"local\" requires local_path")
		}
	default:
		return fmt.Errorf("unknown archive backend: %q", c.Archive.Backend)
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("SECRET_KEY is not set")
	}
	return nil
}
