// Package config loads the YAML configuration of the checkstyle tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/msurajn/analysis-model/issue"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".checkstyle-review.yml"

// DefaultLogFile as logging.file selects the log file in the XDG state directory.
const DefaultLogFile = "default"

type Config struct {
	Report struct {
		Path     string `yaml:"path"`      // "build/reports/checkstyle/main.xml"
		MaxBytes int64  `yaml:"max_bytes"` // 0 = unbounded
	} `yaml:"report"`

	Review struct {
		ToolName         string `yaml:"tool_name"`    // "checkstyle"
		MinSeverity      string `yaml:"min_severity"` // "none"|"low"|"normal"|"high"
		RelDir           string `yaml:"rel_dir"`      // working dir relative to the repository root
		FallBackToGitCLI bool   `yaml:"fallback_to_git_cli"`
	} `yaml:"review"`

	GitHub struct {
		APIURL   string `yaml:"api_url"`   // "" = $GITHUB_API, $GITHUB_API_URL or api.github.com
		TokenEnv string `yaml:"token_env"` // "CHECKSTYLE_GITHUB_API_TOKEN"
	} `yaml:"github"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"console"
		Level  string `yaml:"level"`  // "trace"|"debug"|"info"|"warn"|"error"
		File   string `yaml:"file"`   // "" = stderr, "default" = XDG state dir
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Report.Path = "build/reports/checkstyle/main.xml"
	c.Review.ToolName = "checkstyle"
	c.Review.MinSeverity = "none"
	c.GitHub.TokenEnv = "CHECKSTYLE_GITHUB_API_TOKEN"
	c.Logging.Format = "console"
	c.Logging.Level = "info"
	return c
}

// Load reads path on fsys over the defaults, then applies environment
// overrides. A missing file at DefaultPath is not an error.
func Load(fsys afero.Fs, path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}

	b, err := afero.ReadFile(fsys, path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Env overrides (simple, explicit)
func (c *Config) applyEnv() error {
	if v := os.Getenv("CHECKSTYLE_REPORT"); v != "" {
		c.Report.Path = v
	}
	if v := os.Getenv("CHECKSTYLE_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("$CHECKSTYLE_MAX_BYTES: %w", err)
		}
		c.Report.MaxBytes = n
	}
	if v := os.Getenv("CHECKSTYLE_MIN_SEVERITY"); v != "" {
		c.Review.MinSeverity = v
	}
	if v := os.Getenv("CHECKSTYLE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CHECKSTYLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHECKSTYLE_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	return nil
}

// Validate checks enumerated values and bounds.
func (c *Config) Validate() error {
	var errs []error
	if c.Report.Path == "" {
		errs = append(errs, errors.New("report.path is required"))
	}
	if c.Report.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("report.max_bytes must not be negative, got %d", c.Report.MaxBytes))
	}
	if _, ok := issue.ParseSeverity(c.Review.MinSeverity); !ok {
		errs = append(errs, fmt.Errorf("review.min_severity %q is not one of none, low, normal, high", c.Review.MinSeverity))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format %q is not one of json, console", c.Logging.Format))
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// MinSeverity returns the parsed review threshold.
func (c *Config) MinSeverity() issue.Severity {
	s, _ := issue.ParseSeverity(c.Review.MinSeverity)
	return s
}

// LogLevel returns the parsed log level, info when unset.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil || c.Logging.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
