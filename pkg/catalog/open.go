package catalog

import (
	"context"

	"github.com/matzehuels/libmirror/pkg/config"
)

// Open returns the store selected by cfg: nothing when the catalog is
// disabled, MongoDB when a URI is configured, SQLite otherwise.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.Catalog.Disabled {
		return NewNullStore(), nil
	}
	if cfg.Catalog.MongoURI != "" {
		s, err := OpenMongo(ctx, cfg.Catalog.MongoURI, cfg.Catalog.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := OpenSQLite(ctx, cfg.CatalogPath())
	if err != nil {
		return nil, err
	}
	return s, nil
}
