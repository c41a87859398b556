// Package config loads difftor settings from defaults, an optional config
// file, DIFFTOR_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"difftor/internal/engine"
	"difftor/internal/fsindex"
	"difftor/internal/ignore"
	"difftor/internal/report"
	"difftor/internal/source"
	"difftor/internal/textdiff"
)

// Version is overridden at link time with -ldflags "-X difftor/internal/config.Version=...".
var Version = "1.0.0"

// EnvPrefix prefixes environment variables, e.g. DIFFTOR_OUTPUT_DIR.
const EnvPrefix = "DIFFTOR"

// ConfigName is the config file base name looked up in the working directory.
const ConfigName = "difftor"

// Config is the decoded configuration.
type Config struct {
	OutputDir         string        `mapstructure:"output_dir"`
	DiffMode          string        `mapstructure:"diff_mode"`
	ContextLines      int           `mapstructure:"context_lines"`
	MaxDiffBytes      int           `mapstructure:"max_diff_bytes"`
	IgnoreExt         []string      `mapstructure:"ignore_ext"`
	Exclude           []string      `mapstructure:"exclude"`
	FollowSymlinks    bool          `mapstructure:"follow_symlinks"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	ShowPureRenames   bool          `mapstructure:"show_pure_renames"`
	NormalizeEncoding bool          `mapstructure:"normalize_encoding"`
}

// DefaultConfig values.
var DefaultConfig = Config{
	OutputDir:         report.DefaultOutputDir(),
	DiffMode:          textdiff.Inline.String(),
	ContextLines:      textdiff.DefaultContext,
	MaxDiffBytes:      0, // 0 disables the limit
	IgnoreExt:         []string{},
	Exclude:           []string{},
	FollowSymlinks:    false,
	DownloadTimeout:   source.DefaultTimeout,
	ShowPureRenames:   true,
	NormalizeEncoding: true,
}

// flag name -> config key
var flagKeys = map[string]string{
	"output-dir":         "output_dir",
	"mode":               "diff_mode",
	"context":            "context_lines",
	"max-diff-bytes":     "max_diff_bytes",
	"ignore-ext":         "ignore_ext",
	"exclude":            "exclude",
	"follow-symlinks":    "follow_symlinks",
	"timeout":            "download_timeout",
	"show-pure-renames":  "show_pure_renames",
	"normalize-encoding": "normalize_encoding",
}

// InitFlags registers the configuration flags on cmd.
func InitFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "", "Path to a config file (YAML or JSON). Defaults to ./difftor.yaml if present.")
	f.StringP("output-dir", "o", DefaultConfig.OutputDir, "Directory the HTML report is written to.")
	f.String("mode", DefaultConfig.DiffMode, "Diff rendering: inline or unified.")
	f.Int("context", DefaultConfig.ContextLines, "Unchanged lines shown around each change.")
	f.Int("max-diff-bytes", DefaultConfig.MaxDiffBytes, "Skip rendering diffs whose old+new size exceeds this many bytes (0 = no limit).")
	f.StringSlice("ignore-ext", nil, "Extra file extensions to treat as binary, in addition to the built-in list.")
	f.StringSlice("exclude", nil, "Glob patterns (doublestar syntax) of relative paths to leave out of both trees.")
	f.Bool("follow-symlinks", DefaultConfig.FollowSymlinks, "Index symlinks that point at regular files.")
	f.Duration("timeout", DefaultConfig.DownloadTimeout, "Timeout for downloading a URL source.")
	f.Bool("show-pure-renames", DefaultConfig.ShowPureRenames, "List renames without content changes in the summary.")
	f.Bool("normalize-encoding", DefaultConfig.NormalizeEncoding, "Convert non-UTF-8 text to UTF-8 before diffing.")
}

// Load resolves the configuration for cmd. cwd is searched for difftor.yaml,
// difftor.yml or difftor.json unless --config names a file.
func Load(cmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for name, key := range flagKeys {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", DefaultConfig.OutputDir)
	v.SetDefault("diff_mode", DefaultConfig.DiffMode)
	v.SetDefault("context_lines", DefaultConfig.ContextLines)
	v.SetDefault("max_diff_bytes", DefaultConfig.MaxDiffBytes)
	v.SetDefault("ignore_ext", DefaultConfig.IgnoreExt)
	v.SetDefault("exclude", DefaultConfig.Exclude)
	v.SetDefault("follow_symlinks", DefaultConfig.FollowSymlinks)
	v.SetDefault("download_timeout", DefaultConfig.DownloadTimeout)
	v.SetDefault("show_pure_renames", DefaultConfig.ShowPureRenames)
	v.SetDefault("normalize_encoding", DefaultConfig.NormalizeEncoding)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if _, err := textdiff.ParseMode(c.DiffMode); err != nil {
		return err
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines must be >= 0, got %d", c.ContextLines)
	}
	if c.MaxDiffBytes < 0 {
		return fmt.Errorf("max_diff_bytes must be >= 0, got %d", c.MaxDiffBytes)
	}
	if c.DownloadTimeout < 0 {
		return fmt.Errorf("download_timeout must be >= 0, got %s", c.DownloadTimeout)
	}
	return nil
}

// EngineOptions translates the configuration for the diff engine.
func (c *Config) EngineOptions() (engine.Options, error) {
	mode, err := textdiff.ParseMode(c.DiffMode)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Ignore: ignore.Default(c.IgnoreExt...),
		Index: fsindex.Options{
			FollowSymlinks: c.FollowSymlinks,
			Exclude:        c.Exclude,
		},
		Diff: textdiff.Options{
			Mode:     mode,
			Context:  c.ContextLines,
			MaxBytes: c.MaxDiffBytes,
		},
		NormalizeEncoding: c.NormalizeEncoding,
		ShowPureRenames:   c.ShowPureRenames,
	}, nil
}

// Resolver builds the source resolver for this configuration.
func (c *Config) Resolver() *source.Resolver {
	return &source.Resolver{
		Timeout:   c.DownloadTimeout,
		UserAgent: UserAgent(),
	}
}

// UserAgent is sent with source downloads.
func UserAgent() string { return "difftor/" + Version }
