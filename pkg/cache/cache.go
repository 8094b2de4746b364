// Package cache stores computed layouts and rendered maps.
//
// Three backends share the [Cache] interface: [FileCache] for the CLI,
// [RedisCache] for servers sharing one cache, and [NullCache] to disable
// caching. A [MemoryCache] serves tests and single-process servers.
//
// Keys come from a [Keyer]: the input hash plus every option that changes
// the output goes into the key, so a cached entry is never stale for the
// request that finds it. [ScopedKeyer] prefixes keys to keep tenants or
// sequence databases apart.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries. Layouts are pure functions of their
// input, so the TTLs only bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts is everything besides the feature rows that changes a layout.
type LayoutKeyOpts struct {
	OptionsHash string `json:"options"`
}

// ArtifactKeyOpts is everything besides the layout that changes a rendered map.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Title       string `json:"title,omitempty"`
	Width       int    `json:"width,omitempty"`
	NoTicks     bool   `json:"no_ticks,omitempty"`
	NoLabels    bool   `json:"no_labels,omitempty"`
	Interactive bool   `json:"interactive,omitempty"`
	Highlight   string `json:"highlight,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}
