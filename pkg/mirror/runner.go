package mirror

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/matzehuels/libmirror/pkg/catalog"
	"github.com/matzehuels/libmirror/pkg/config"
	"github.com/matzehuels/libmirror/pkg/errors"
	"github.com/matzehuels/libmirror/pkg/httputil"
	"github.com/matzehuels/libmirror/pkg/integrations/maven"
	"github.com/matzehuels/libmirror/pkg/library"
	"github.com/matzehuels/libmirror/pkg/observability"
	"github.com/matzehuels/libmirror/pkg/versions"
)

// Repository is the remote side of a mirror run. [maven.Client] implements it.
type Repository interface {
	FetchMasterIndex(ctx context.Context) (*maven.MasterIndex, error)
	FetchGroupIndex(ctx context.Context, group string) (*maven.GroupIndex, error)
	ResolvePackaging(ctx context.Context, coord maven.Coordinate) (maven.Packaging, error)
	DownloadArtifact(ctx context.Context, coord maven.Coordinate, ext string, w io.Writer) (int64, error)
}

// Runner walks a repository and materializes every accepted version under
// the configured destination.
//
// The walk is sequential: groups in master-index order, artifacts in
// group-index order, versions in their published order. Failures reading
// an index end the run. Failures on a single version are logged, recorded
// in [Result.Failures] and the walk moves on.
type Runner struct {
	Config  *config.Config
	Repo    Repository
	Catalog catalog.Store
	Logger  *log.Logger
	Layout  library.Layout

	retry httputil.Policy
}

// NewRunner creates a runner. A nil store records nothing and a nil logger
// discards output.
func NewRunner(cfg *config.Config, repo Repository, store catalog.Store, logger *log.Logger) *Runner {
	if store == nil {
		store = catalog.NewNullStore()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Config:  cfg,
		Repo:    repo,
		Catalog: store,
		Logger:  logger,
		Layout: library.Layout{
			Root:           cfg.Output.Destination,
			LibraryDir:     cfg.Output.LibraryDir,
			DescriptorName: cfg.Output.DescriptorName,
		},
		retry: httputil.Policy{Attempts: cfg.HTTP.Retries, Delay: cfg.RetryDelay()},
	}
}

// Run mirrors the repository. It holds the destination's run lock for its
// whole duration and fails immediately if another run holds it.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	lock, err := acquireLock(r.Config.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.Logger.Warn("failed to release run lock", "error", err)
		}
	}()

	start := time.Now()
	result := &Result{RunID: uuid.NewString()}
	err = r.run(ctx, result)
	result.Duration = time.Since(start)

	observability.Mirror().OnRunComplete(ctx, result.RunID, result.Duration, err)
	return result, err
}

func (r *Runner) run(ctx context.Context, result *Result) error {
	r.Logger.Debug("fetching master index", "run", result.RunID)
	master, err := r.Repo.FetchMasterIndex(ctx)
	if err != nil {
		return fmt.Errorf("master index: %w", err)
	}

	groups := SelectGroups(master.Groups, r.Config)
	if len(groups) == 0 {
		r.Logger.Warn("no groups selected", "available", len(master.Groups))
	}
	observability.Mirror().OnRunStart(ctx, result.RunID, len(groups))
	r.Logger.Info("starting mirror", "groups", len(groups), "destination", r.Config.Output.Destination)

	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx, err := r.Repo.FetchGroupIndex(ctx, group)
		if err != nil {
			return fmt.Errorf("group index %s: %w", group, err)
		}
		result.Groups++
		result.Libraries += len(idx.Libraries)
		observability.Mirror().OnGroupStart(ctx, group, len(idx.Libraries))
		r.Logger.Info("group", "name", group, "libraries", len(idx.Libraries), "progress", fmt.Sprintf("%d/%d", i+1, len(groups)))

		for j, lib := range idx.Libraries {
			r.Logger.Info("library", "name", lib.Group+":"+lib.Name, "progress", fmt.Sprintf("%d/%d", j+1, len(idx.Libraries)))
			if err := r.mirrorLibrary(ctx, result, lib); err != nil {
				return err
			}
		}
	}
	return nil
}

// mirrorLibrary mirrors the accepted versions of one library. It returns an
// error only when the run must stop.
func (r *Runner) mirrorLibrary(ctx context.Context, result *Result, lib maven.Library) error {
	markers := r.Config.Filter.ExcludedMarkers
	accepted := versions.Filter(lib.Versions, markers)
	result.VersionsAccepted += len(accepted)
	result.VersionsExcluded += versions.Excluded(lib.Versions, markers)

	for i, version := range accepted {
		coord := maven.Coordinate{Group: lib.Group, Artifact: lib.Name, Version: version}
		r.Logger.Info("processing version", "coordinate", coord.String(), "progress", fmt.Sprintf("%d/%d", i+1, len(accepted)))
		start := time.Now()

		outcome, err := r.mirrorVersion(ctx, result, coord)
		observability.Mirror().OnVersionComplete(ctx, coord.String(), outcome, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Logger.Error("version failed", "coordinate", coord.String(), "code", errors.GetCode(err), "error", err)
			result.Failures = append(result.Failures, Failure{Coordinate: coord, Err: err})
			continue
		}

		switch outcome {
		case observability.OutcomeMirrored:
			result.Mirrored++
		case observability.OutcomeSkipped:
			result.Skipped++
		}
		r.Logger.Debug(outcome, "coordinate", coord.String())
	}
	return nil
}

// mirrorVersion resolves, downloads and describes one version. Every error
// it returns belongs to the recoverable tier.
func (r *Runner) mirrorVersion(ctx context.Context, result *Result, coord maven.Coordinate) (string, error) {
	if err := errors.ValidateCoordinate(coord.Group, coord.Artifact, coord.Version); err != nil {
		return observability.OutcomeFailed, err
	}

	pkg, err := r.Repo.ResolvePackaging(ctx, coord)
	if err != nil {
		return observability.OutcomeFailed, fmt.Errorf("resolve packaging: %w", err)
	}

	if _, err := r.Layout.EnsureDir(coord.Group, coord.Artifact, coord.Version); err != nil {
		return observability.OutcomeFailed, err
	}

	artifactPath := r.Layout.ArtifactPath(coord.Group, coord.Artifact, coord.Version, pkg.Extension)
	size, downloaded, err := r.fetchArtifact(ctx, coord, pkg.Extension, artifactPath)
	if err != nil {
		return observability.OutcomeFailed, err
	}
	if downloaded {
		result.Downloaded++
		result.Bytes += size
		r.Logger.Info("downloaded", "coordinate", coord.String(), "packaging", pkg.Extension, "size", humanize.Bytes(uint64(size)))
	} else {
		result.ArtifactsSkipped++
	}

	descriptorPath := r.Layout.DescriptorPath(coord.Group, coord.Artifact, coord.Version)
	written, err := library.WriteDescriptor(descriptorPath, library.Descriptor{
		Name:     pkg.DisplayName,
		Category: r.Config.Output.Category,
		Version:  coord.Version,
	})
	if err != nil {
		return observability.OutcomeFailed, fmt.Errorf("write descriptor: %w", err)
	}
	if written {
		result.DescriptorsWritten++
	} else {
		result.DescriptorsSkipped++
	}

	entry := catalog.Entry{
		RunID:          result.RunID,
		Group:          coord.Group,
		Artifact:       coord.Artifact,
		Version:        coord.Version,
		Name:           pkg.DisplayName,
		Packaging:      pkg.Extension,
		Category:       r.Config.Output.Category,
		ArtifactPath:   artifactPath,
		DescriptorPath: descriptorPath,
		Size:           size,
		MirroredAt:     time.Now(),
	}
	if err := r.Catalog.Record(ctx, entry); err != nil {
		r.Logger.Warn("catalog record failed", "coordinate", coord.String(), "error", err)
	}

	if downloaded || written {
		return observability.OutcomeMirrored, nil
	}
	return observability.OutcomeSkipped, nil
}

// fetchArtifact downloads the artifact to path unless it already exists, in
// which case no request is made. Each attempt writes a fresh temporary file.
func (r *Runner) fetchArtifact(ctx context.Context, coord maven.Coordinate, ext, path string) (int64, bool, error) {
	if info, err := os.Stat(path); err == nil {
		return info.Size(), false, nil
	} else if !stderrors.Is(err, os.ErrNotExist) {
		return 0, false, errors.Wrap(errors.ErrCodeFilesystem, err, "stat artifact")
	}

	var size int64
	err := r.retry.Do(ctx, func() error {
		return library.WriteFileAtomic(path, func(w io.Writer) error {
			n, err := r.Repo.DownloadArtifact(ctx, coord, ext, w)
			size = n
			return err
		})
	})
	if err != nil {
		return 0, false, errors.Wrap(errors.ErrCodeDownload, err, "download %s", coord)
	}
	return size, true, nil
}
