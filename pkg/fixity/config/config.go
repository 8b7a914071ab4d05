package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// EnvPrefix prefixes environment overrides, e.g. FIXITY_CACHE_ENABLED.
const EnvPrefix = "FIXITY"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the digest cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoaderConfig configures manifest parsing.
type LoaderConfig struct {
	Layout          string `mapstructure:"layout"`
	XMLDigestPrefix string `mapstructure:"xml_digest_prefix"`
	NormalizeCase   bool   `mapstructure:"normalize_case"`
}

// ReportConfig configures diff reports.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// Config is the application configuration.
type Config struct {
	Algorithm  string        `mapstructure:"algorithm"`
	Algorithms []string      `mapstructure:"algorithms"`
	BufferSize string        `mapstructure:"buffer_size"`
	Workers    int           `mapstructure:"workers"`
	Exclude    []string      `mapstructure:"exclude"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Loader     LoaderConfig  `mapstructure:"loader"`
	Report     ReportConfig  `mapstructure:"report"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// BufferBytes parses BufferSize.
func (c *Config) BufferBytes() (int, error) {
	n, err := types.ParseSize(c.BufferSize)
	if err != nil {
		return 0, fmt.Errorf("buffer_size: %w", err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("buffer_size: %w: must be positive", types.ErrInvalidSize)
	}
	return int(n), nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("algorithms", DefaultAlgorithms)
	v.SetDefault("buffer_size", DefaultBufferSize)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("exclude", DefaultExclusions)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "") // empty means DefaultCachePath

	v.SetDefault("loader.layout", DefaultLayout)
	v.SetDefault("loader.xml_digest_prefix", DefaultXMLDigestPrefix)
	v.SetDefault("loader.normalize_case", true)

	v.SetDefault("report.format", DefaultReportFormat)
	v.SetDefault("report.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // empty means DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", DefaultComponentLevels)
}

// Configure points v at the config file and environment. An explicit
// cfgFile replaces the search of ConfigDir.
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// Read reads the config file into v. A missing file is not an error when
// the path was searched for rather than given.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Decode unmarshals v and expands ~ in paths.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{&cfg.Cache.Path, &cfg.Report.Path, &cfg.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}

	return &cfg, nil
}

// Load builds a configuration from the default file location and the
// environment.
func Load() (*Config, error) {
	v := viper.New()
	Configure(v, "")
	if err := Read(v); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ConfigDir returns $XDG_CONFIG_HOME/fixity, or ~/.config/fixity when the
// variable is unset.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "fixity"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "fixity"), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// CacheDir returns $XDG_CACHE_HOME/fixity.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "fixity")
}

// DefaultCachePath returns the digest cache database directory.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "digests")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config file to path unless one
// already exists. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultFile()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

func defaultFile() string {
	var b strings.Builder

	b.WriteString("# fixity configuration\n\n")
	b.WriteString("# Digest keying generated manifests and directory inputs to diff\n")
	fmt.Fprintf(&b, "algorithm: %s\n\n", DefaultAlgorithm)
	b.WriteString("# Digests printed by 'fixity digest'\nalgorithms:\n")
	for _, a := range DefaultAlgorithms {
		fmt.Fprintf(&b, "  - %s\n", a)
	}
	fmt.Fprintf(&b, "\n# Read size per file\nbuffer_size: %s\n\n", DefaultBufferSize)
	b.WriteString("# Hashing workers (0 sizes the pool from CPU and memory)\nworkers: 0\n\n")
	b.WriteString("# Paths skipped when walking directories\nexclude:\n")
	for _, e := range DefaultExclusions {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	b.WriteString(`
# Digest cache for unchanged files
cache:
  enabled: true
  # empty means $XDG_CACHE_HOME/fixity/digests
  path: ""

# Manifest parsing
loader:
  # checksum-first ("checksum,filename") or filename-first
  layout: checksum-first
  # XML checksum elements whose digest attribute starts with this are used
  xml_digest_prefix: cksum
  # upper-case checksums so hex from different tools compares equal
  normalize_case: true

# Diff reports
report:
  # plain, json, yaml or pretty
  format: plain
  # also write the report to this file
  path: ""

logging:
  # debug, info, warn, error
  level: info
  # empty means $XDG_STATE_HOME/fixity/fixity.log
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  components:
    digest: info
    walker: info
    loader: info
    reconcile: info
    report: warn
    cache: warn
`)
	return b.String()
}
