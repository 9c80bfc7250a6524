package maven

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/libmirror/pkg/cache"
	"github.com/matzehuels/libmirror/pkg/errors"
	"github.com/matzehuels/libmirror/pkg/httputil"
	"github.com/matzehuels/libmirror/pkg/integrations"
)

// Coordinate identifies one published version of an artifact.
type Coordinate struct {
	Group    string // Dotted group id (e.g., "androidx.core")
	Artifact string // Artifact id (e.g., "core-ktx")
	Version  string // Version (e.g., "1.12.0")
}

// String returns the coordinate as "group:artifact:version".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// GroupPath converts a dotted group id to its repository path ("a.b" -> "a/b").
func GroupPath(group string) string {
	return strings.ReplaceAll(group, ".", "/")
}

// Options configures a [Client].
type Options struct {
	BaseURL   string          // Repository root, without trailing slash
	Timeout   time.Duration   // Per-request timeout
	UserAgent string          // Sent with every request when non-empty
	IndexTTL  time.Duration   // Cache lifetime of master and group indexes; 0 disables index caching
	Retry     httputil.Policy // Applied to POM fetches only
	Refresh   bool            // Bypass cached documents
}

// Client reads a Maven-layout repository that publishes master-index.xml and
// per-group group-index.xml files.
//
// Index fetches are made exactly once: a broken index is a structural
// problem that retrying does not fix. POM fetches follow Options.Retry.
// Artifact downloads are single attempts; callers own their retry because
// each attempt needs a fresh destination.
type Client struct {
	*integrations.Client
	baseURL  string
	indexTTL time.Duration
	retry    httputil.Policy
	refresh  bool
}

// NewClient creates a repository client. A nil cache disables caching.
func NewClient(c cache.Cache, opts Options) *Client {
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	return &Client{
		Client:   integrations.NewClient(c, opts.Timeout, headers),
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		indexTTL: opts.IndexTTL,
		retry:    opts.Retry,
		refresh:  opts.Refresh,
	}
}

// BaseURL returns the repository root.
func (c *Client) BaseURL() string { return c.baseURL }

// MasterIndexURL returns the URL of the root index.
func (c *Client) MasterIndexURL() string {
	return c.baseURL + "/master-index.xml"
}

// GroupIndexURL returns the URL of group's index.
func (c *Client) GroupIndexURL(group string) string {
	return c.baseURL + "/" + GroupPath(group) + "/group-index.xml"
}

// FileURL returns the URL of coord's file with the given extension:
// <group-path>/<artifact>/<version>/<artifact>-<version>.<ext>
func (c *Client) FileURL(coord Coordinate, ext string) string {
	return c.baseURL + "/" + GroupPath(coord.Group) + "/" + coord.Artifact + "/" + coord.Version +
		"/" + coord.Artifact + "-" + coord.Version + "." + ext
}

// FetchMasterIndex retrieves the list of groups published by the repository.
func (c *Client) FetchMasterIndex(ctx context.Context) (*MasterIndex, error) {
	var idx *MasterIndex
	err := c.Document(ctx, c.MasterIndexURL(), c.indexOptions(), func(data []byte) error {
		var err error
		idx, err = ParseMasterIndex(data)
		return err
	})
	if err != nil {
		return nil, classify(err, "master index")
	}
	return idx, nil
}

// FetchGroupIndex retrieves the artifacts and raw version lists of group.
func (c *Client) FetchGroupIndex(ctx context.Context, group string) (*GroupIndex, error) {
	var idx *GroupIndex
	err := c.Document(ctx, c.GroupIndexURL(group), c.indexOptions(), func(data []byte) error {
		var err error
		idx, err = ParseGroupIndex(group, data)
		return err
	})
	if err != nil {
		return nil, classify(err, "group index %s", group)
	}
	return idx, nil
}

// FetchPOM retrieves the project descriptor of coord. Published POMs are
// immutable, so they are cached without expiry.
func (c *Client) FetchPOM(ctx context.Context, coord Coordinate) (*POM, error) {
	opts := integrations.DocumentOptions{
		KeyType: "pom",
		Refresh: c.refresh,
		Retry:   c.retry,
	}
	var pom *POM
	err := c.Document(ctx, c.FileURL(coord, "pom"), opts, func(data []byte) error {
		var err error
		pom, err = ParsePOM(data)
		return err
	})
	if err != nil {
		return nil, classify(err, "pom %s", coord)
	}
	return pom, nil
}

// ResolvePackaging fetches coord's POM and resolves its file extension and
// display name (see [POM.Resolve]).
func (c *Client) ResolvePackaging(ctx context.Context, coord Coordinate) (Packaging, error) {
	pom, err := c.FetchPOM(ctx, coord)
	if err != nil {
		return Packaging{}, err
	}
	return pom.Resolve(coord.Artifact)
}

// DownloadArtifact streams coord's artifact file with the given extension
// into w and returns the number of bytes written. Any non-200 response fails
// with an error naming the URL.
func (c *Client) DownloadArtifact(ctx context.Context, coord Coordinate, ext string, w io.Writer) (int64, error) {
	n, err := c.Download(ctx, c.FileURL(coord, ext), w)
	if err != nil {
		return n, classify(err, "artifact %s", coord)
	}
	return n, nil
}

// classify attaches an error code to a failed request. Errors that already
// carry a code, and context errors, are returned unchanged.
func classify(err error, format string, args ...any) error {
	var code errors.Code
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, integrations.ErrNotFound):
		code = errors.ErrCodeNotFound
	case stderrors.Is(err, integrations.ErrTimeout):
		code = errors.ErrCodeTimeout
	case stderrors.Is(err, integrations.ErrNetwork):
		code = errors.ErrCodeNetwork
	default:
		return err
	}
	return errors.Wrap(code, err, format, args...)
}

func (c *Client) indexOptions() integrations.DocumentOptions {
	return integrations.DocumentOptions{
		KeyType: "index",
		TTL:     c.indexTTL,
		Refresh: c.refresh,
		NoCache: c.indexTTL <= 0,
		Retry:   httputil.NoRetry,
	}
}
