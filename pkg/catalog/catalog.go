package catalog

import (
	"context"
	"time"
)

// Entry records one mirrored version.
type Entry struct {
	RunID          string    `json:"run_id" bson:"run_id"`
	Group          string    `json:"group" bson:"group"`
	Artifact       string    `json:"artifact" bson:"artifact"`
	Version        string    `json:"version" bson:"version"`
	Name           string    `json:"name" bson:"name"`
	Packaging      string    `json:"packaging" bson:"packaging"`
	Category       string    `json:"category" bson:"category"`
	ArtifactPath   string    `json:"artifact_path" bson:"artifact_path"`
	DescriptorPath string    `json:"descriptor_path" bson:"descriptor_path"`
	Size           int64     `json:"size" bson:"size"`
	MirroredAt     time.Time `json:"mirrored_at" bson:"mirrored_at"`
}

// Coordinate returns "group:artifact:version".
func (e Entry) Coordinate() string {
	return e.Group + ":" + e.Artifact + ":" + e.Version
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Group    string
	Artifact string
	Version  string
	RunID    string
	Limit    int // 0 means no limit
}

// Store persists catalog entries. Record upserts on (group, artifact,
// version), so recording the same version twice leaves a single entry.
// Entries are listed ordered by group, artifact and version.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}
