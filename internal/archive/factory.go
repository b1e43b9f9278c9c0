package archive

import (
	"fmt"

	"github.com/joaovitor3/osm-tm-communication/internal/config"
)

// New creates the archive backend named by the configuration.
func New(cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Backend {
	case "github":
		return NewGitHubStore(GitHubOptions{
			Repository:     cfg.Repository,
			Branch:         cfg.Branch,
			Directory:      cfg.Directory,
			Token:          cfg.Token,
			CommitterName:  cfg.CommitterName,
			CommitterEmail: cfg.CommitterEmail,
		})
	case "gitlab":
		return NewGitLabStore(GitLabOptions{
			Project:        cfg.Repository,
			Branch:         cfg.Branch,
			Directory:      cfg.Directory,
			Token:          cfg.Token,
			BaseURL:        cfg.GitLabBaseURL,
			CommitterName:  cfg.CommitterName,
			CommitterEmail: cfg.CommitterEmail,
		})
	case "local":
		return NewLocalStore(LocalOptions{
			Path:           cfg.LocalPath,
			Directory:      cfg.Directory,
			CommitterName:  cfg.CommitterName,
			CommitterEmail: cfg.CommitterEmail,
		})
	default:
		return nil, fmt.Errorf("unknown archive backend: %q", cfg.Backend)
	}
}
