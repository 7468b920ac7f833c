package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Default data source locations.
const (
	DefaultSourceBaseURL = "http://127.0.0.1:5173"
	DefaultBodyPath      = "/assets/json/bible.json"
	DefaultTitlesPath    = "/assets/json/title.json"
	DefaultHeadingsPath  = "/assets/json/bibleheadings.json"

	// DefaultCacheExpiryMinutes is one day.
	DefaultCacheExpiryMinutes = 24 * 60

	// DefaultCompressMinBytes is the value size at which the store switches to xz.
	DefaultCompressMinBytes = 256 * 1024
)

// Config holds application configuration.
type Config struct {
	// SourceBaseURL is prepended to the three dataset paths.
	SourceBaseURL string `json:"source_base_url,omitempty"`
	BodyPath      string `json:"body_path,omitempty"`
	TitlesPath    string `json:"titles_path,omitempty"`
	HeadingsPath  string `json:"headings_path,omitempty"`

	// CacheExpiryMinutes is the freshness window shared by all cached datasets.
	CacheExpiryMinutes int `json:"cache_expiry_minutes,omitempty"`

	// HTTPTimeoutSeconds bounds each dataset fetch. 0 keeps the transport default.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty"`

	// CompressMinBytes is the smallest stored value that gets xz-compressed.
	CompressMinBytes int `json:"compress_min_bytes,omitempty"`

	// AllowedPaths is an allowlist of directories for export operations.
	// Paths outside ~/.lectio/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool type names to disable entirely.
	// Known types: "bible", "cache".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`
}

// envOverrides is read from the process environment after the JSON files.
type envOverrides struct {
	SourceBaseURL      string `env:"LECTIO_SOURCE_BASE_URL"`
	CacheExpiryMinutes int    `env:"LECTIO_CACHE_EXPIRY_MINUTES"`
	HTTPTimeoutSeconds int    `env:"LECTIO_HTTP_TIMEOUT_SECONDS"`
	LogLevel           string `env:"LECTIO_LOG_LEVEL"`
	LogFormat          string `env:"LECTIO_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SourceBaseURL:      DefaultSourceBaseURL,
		BodyPath:           DefaultBodyPath,
		TitlesPath:         DefaultTitlesPath,
		HeadingsPath:       DefaultHeadingsPath,
		CacheExpiryMinutes: DefaultCacheExpiryMinutes,
		CompressMinBytes:   DefaultCompressMinBytes,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// CacheExpiry returns the freshness window as a duration.
func (c *Config) CacheExpiry() time.Duration {
	if c.CacheExpiryMinutes <= 0 {
		return DefaultCacheExpiryMinutes * time.Minute
	}
	return time.Duration(c.CacheExpiryMinutes) * time.Minute
}

// HTTPTimeout returns the per-fetch timeout, or 0 for the transport default.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json and applies env overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.lectio.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg)
}

// LoadWithRepo loads configuration from both global (~/.lectio) and repo (.lectio) directories.
// Repo config is found by walking upward from startDir to find the nearest .lectio/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment overrides win over both files.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return applyEnv(Merge(Merge(DefaultConfig(), global), repo))
}

// FindRepoConfig walks upward from startDir to find the nearest .lectio/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".lectio", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// applyEnv overlays LECTIO_* environment variables onto cfg.
func applyEnv(cfg *Config) (*Config, error) {
	var env envOverrides
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, err
	}
	return Merge(cfg, &Config{
		SourceBaseURL:      env.SourceBaseURL,
		CacheExpiryMinutes: env.CacheExpiryMinutes,
		HTTPTimeoutSeconds: env.HTTPTimeoutSeconds,
		LogLevel:           env.LogLevel,
		LogFormat:          env.LogFormat,
	}), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		SourceBaseURL:      mergeString(base.SourceBaseURL, overlay.SourceBaseURL),
		BodyPath:           mergeString(base.BodyPath, overlay.BodyPath),
		TitlesPath:         mergeString(base.TitlesPath, overlay.TitlesPath),
		HeadingsPath:       mergeString(base.HeadingsPath, overlay.HeadingsPath),
		CacheExpiryMinutes: mergeInt(base.CacheExpiryMinutes, overlay.CacheExpiryMinutes),
		HTTPTimeoutSeconds: mergeInt(base.HTTPTimeoutSeconds, overlay.HTTPTimeoutSeconds),
		CompressMinBytes:   mergeInt(base.CompressMinBytes, overlay.CompressMinBytes),
		DBMaxOpenConns:     mergeInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns:     mergeInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns),
		LogLevel:           mergeString(base.LogLevel, overlay.LogLevel),
		LogFormat:          mergeString(base.LogFormat, overlay.LogFormat),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func mergeString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return base
}

func mergeInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
