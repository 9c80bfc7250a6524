package mirror

import (
	"context"

	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/errors"
	"github.com/matzehuels/libmirror/pkg/versions"
)

// SelectGroups returns the groups of all that cfg wants, in their original
// order.
func SelectGroups(all []string, cfg *config.Config) []string {
	selected := make([]string, 0, len(all))
	for _, g := range all {
		if cfg.WantsGroup(g) {
			selected = append(selected, g)
		}
	}
	return selected
}

// LibraryVersions returns the accepted versions of one library.
func LibraryVersions(ctx context.Context, repo Repository, group, artifact string, markers []string) ([]string, error) {
	idx, err := repo.FetchGroupIndex(ctx, group)
	if err != nil {
		return nil, err
	}
	for _, lib := range idx.Libraries {
		if lib.Name == artifact {
			return versions.Filter(lib.Versions, markers), nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "%s has no artifact %s", group, artifact)
}
