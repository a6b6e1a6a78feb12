package envschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxSnapshotSize is the maximum allowed snapshot size (10MB).
const MaxSnapshotSize = 10 * 1024 * 1024

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot errors.
var (
	// ErrSnapshotTooLarge is returned when a snapshot exceeds MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("envschema: snapshot exceeds 10MB size limit")

	// ErrUnsupportedVersion is returned when reading a snapshot with unknown version.
	ErrUnsupportedVersion = errors.New("envschema: unsupported snapshot version")
)

var supportedVersions = map[string]bool{
	"1.0": true,
}

// ConfigSnapshot is a point-in-time record of a validated configuration.
type ConfigSnapshot struct {
	// Version is the snapshot format version (currently "1.0")
	Version string `json:"version"`

	// Timestamp is when the snapshot was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds resolved values keyed by variable name, secrets redacted.
	Config map[string]any `json:"config"`

	// Provenance records the source of each value.
	Provenance []FieldProvenance `json:"provenance"`

	// Unused lists undeclared, non-ambient variables seen during validation.
	Unused []string `json:"unused,omitempty"`
}

// SnapshotOption configures snapshot creation behavior.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	exclude []string
}

// WithExclude omits the named variables (case-insensitive) from the snapshot.
func WithExclude(keys ...string) SnapshotOption {
	return func(cfg *snapshotConfig) {
		cfg.exclude = append(cfg.exclude, keys...)
	}
}

// CreateSnapshot captures cfg with secrets redacted.
func CreateSnapshot(cfg *Config, opts ...SnapshotOption) (*ConfigSnapshot, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	snapCfg := &snapshotConfig{}
	for _, opt := range opts {
		opt(snapCfg)
	}

	excluded := make(map[string]bool, len(snapCfg.exclude))
	for _, key := range snapCfg.exclude {
		excluded[strings.ToUpper(key)] = true
	}

	values := make(map[string]any)
	provenance := make([]FieldProvenance, 0, len(cfg.values))
	for _, fp := range cfg.Provenance() {
		if excluded[strings.ToUpper(fp.Key)] {
			continue
		}
		values[fp.Key] = exportValue(cfg, fp.Key)
		provenance = append(provenance, fp)
	}

	return &ConfigSnapshot{
		Version:    SnapshotVersion,
		Timestamp:  time.Now().UTC(),
		Config:     values,
		Provenance: provenance,
		Unused:     cfg.Unused(),
	}, nil
}

// ExpandPath expands template variables using current time.
func ExpandPath(template string) string {
	return ExpandPathWithTime(template, time.Now())
}

// ExpandPathWithTime replaces every {{timestamp}} in template with t
// formatted as 20060102-150405 (UTC).
func ExpandPathWithTime(template string, t time.Time) string {
	return strings.ReplaceAll(template, "{{timestamp}}", t.UTC().Format("20060102-150405"))
}

// WriteSnapshot writes snapshot as indented JSON to pathTemplate.
// {{timestamp}} in the path expands to the snapshot's own timestamp.
// The file is written to a temporary name and renamed into place.
func WriteSnapshot(snapshot *ConfigSnapshot, pathTemplate string) (string, error) {
	if snapshot == nil {
		return "", ErrNilConfig
	}

	target := ExpandPathWithTime(pathTemplate, snapshot.Timestamp)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if len(data) > MaxSnapshotSize {
		return "", ErrSnapshotTooLarge
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := target + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return target, nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*ConfigSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot ConfigSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if !supportedVersions[snapshot.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, snapshot.Version)
	}

	return &snapshot, nil
}
