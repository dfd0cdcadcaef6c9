package settings

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// Remove omitempty so that false is serialized (we need to persist explicit overrides)
	// Glob pattern used when scanning a directory for data files
	DataFilePattern string `yaml:"data_file_pattern" json:"data_file_pattern"`
	// Maximum number of files reported when scanning a directory
	MaxDataFiles int `yaml:"max_data_files" json:"max_data_files"`
	// Page size for chunked table reads
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	// Whether derived views (grids, ranges) are memoized
	EnableViewCache bool `yaml:"enable_view_cache" json:"enable_view_cache"`
	// InstanceID is a unique identifier for this installation (not visible in settings dialogs)
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	DataFilePattern: "**/*.csv",
	MaxDataFiles:    500,
	ChunkSize:       1000,
	EnableViewCache: true,
}

// Defaults returns a copy of the built-in defaults.
func Defaults() Settings {
	return defaultSettings
}
