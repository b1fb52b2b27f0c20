// Package common holds helpers shared by the CLI subcommands.
package common

import (
	"github.com/contextkit/corpora/internal/config"
	"github.com/contextkit/corpora/internal/logger"
	"github.com/contextkit/corpora/internal/storage"
)

// Deps bundles what every subcommand needs: resolved configuration, a
// logger, and the metadata store path.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
}

// OpenStore opens the cache metadata store at the configured location,
// falling back to the XDG default.
func (d *Deps) OpenStore() (*storage.Store, error) {
	path := d.Config.DatabasePath
	if path == "" {
		path = storage.DefaultPath()
	}

	return storage.Open(path)
}
