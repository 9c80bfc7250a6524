package mirror

import (
	"time"

	"github.com/matzehuels/libmirror/pkg/integrations/maven"
)

// Result summarizes a mirror run. It is returned even when the run ends
// early, holding what was done up to that point.
type Result struct {
	RunID    string
	Duration time.Duration

	Groups           int // Group indexes read
	Libraries        int // Artifacts listed by those indexes
	VersionsAccepted int // Versions that passed the filter
	VersionsExcluded int // Pre-release versions dropped by the filter

	Mirrored int // Versions where at least one file was written
	Skipped  int // Versions already fully present

	Downloaded         int   // Artifact files fetched
	ArtifactsSkipped   int   // Artifact files already present
	Bytes              int64 // Artifact bytes fetched
	DescriptorsWritten int
	DescriptorsSkipped int

	Failures []Failure
}

// Failure is a version that the recoverable tier gave up on.
type Failure struct {
	Coordinate maven.Coordinate
	Err        error
}

func (f Failure) Error() string {
	return f.Coordinate.String() + ": " + f.Err.Error()
}

// Failed returns the number of failed versions.
func (r *Result) Failed() int { return len(r.Failures) }
