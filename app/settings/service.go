// Package settings manages the persisted user configuration: a small YAML
// file of overrides on top of built-in defaults. Only values that differ
// from the defaults are written, so a defaults-only state leaves no file
// behind.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Service manages reading/writing settings from disk.
type Service struct {
	path string
}

// NewService returns a service persisting to path, or to DefaultPath when
// path is empty.
func NewService(path string) (*Service, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Service{path: path}, nil
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "sweepview", "sweepview.yml"), nil
}

// Path returns the settings file location in use.
func (s *Service) Path() string {
	return s.path
}

// Load returns the effective settings (defaults overlaid with file overrides
// if any).
func (s *Service) Load() (Settings, error) {
	// Start with defaults and overlay any on-disk overrides
	settings := defaultSettings

	// If file doesn't exist, return defaults
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return settings, err
	}

	// Unmarshal into a generic map to detect key presence
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings, err
	}
	if v, ok := m["data_file_pattern"]; ok {
		if vs, oks := v.(string); oks && strings.TrimSpace(vs) != "" {
			settings.DataFilePattern = vs
		}
	}
	if v, ok := m["max_data_files"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.MaxDataFiles = vi
		}
	}
	if v, ok := m["chunk_size"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.ChunkSize = vi
		}
	}
	if v, ok := m["enable_view_cache"]; ok {
		if vb, okb := v.(bool); okb {
			settings.EnableViewCache = vb
		}
	}
	if v, ok := m["instance_id"]; ok {
		if vs, oks := v.(string); oks {
			settings.InstanceID = vs
		}
	}
	return settings, nil
}

// Save writes only the values that differ from defaults. With nothing to
// write, an existing file is removed to reflect the defaults-only state.
func (s *Service) Save(in Settings) error {
	old, err := s.Load()
	if err != nil {
		return err
	}

	// Build a minimal map containing only non-default values to avoid
	// zero-value serialization pitfalls
	data := make(map[string]any)
	if p := strings.TrimSpace(in.DataFilePattern); p != "" && p != defaultSettings.DataFilePattern {
		data["data_file_pattern"] = p
	}
	if in.MaxDataFiles >= 1 && in.MaxDataFiles != defaultSettings.MaxDataFiles {
		data["max_data_files"] = in.MaxDataFiles
	}
	if in.ChunkSize >= 1 && in.ChunkSize != defaultSettings.ChunkSize {
		data["chunk_size"] = in.ChunkSize
	}
	if in.EnableViewCache != defaultSettings.EnableViewCache {
		data["enable_view_cache"] = in.EnableViewCache
	}

	// Preserve existing instance ID when the incoming settings omit it
	instanceID := strings.TrimSpace(in.InstanceID)
	if instanceID == "" {
		instanceID = strings.TrimSpace(old.InstanceID)
	}
	if instanceID != "" {
		data["instance_id"] = instanceID
	}

	if len(data) == 0 {
		// If there is an existing file, remove it to reflect defaults-only state
		if _, statErr := os.Stat(s.path); statErr == nil {
			return os.Remove(s.path)
		}
		return nil
	}

	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

// EnsureInstanceID returns the stored installation identifier, generating
// and persisting one on first use.
func (s *Service) EnsureInstanceID() (string, error) {
	settings, err := s.Load()
	if err != nil {
		return "", err
	}
	if settings.InstanceID != "" {
		return settings.InstanceID, nil
	}

	settings.InstanceID = uuid.NewString()
	if err := s.Save(settings); err != nil {
		return "", err
	}
	return settings.InstanceID, nil
}
