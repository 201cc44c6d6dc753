// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/odooup/odooup/internal/cueutil"
	"github.com/odooup/odooup/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "odooup"
	// ConfigFileName is the name of the user config file.
	ConfigFileName = "config.cue"
	// LocalConfigFileName is looked up in the working directory when the
	// user config file is absent.
	LocalConfigFileName = "odooup.cue"
	// EnvPrefix prefixes environment overrides, e.g. ODOOUP_SKIP_NATIVE.
	EnvPrefix = "ODOOUP"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the odooup directory under the platform config
// directory (os.UserConfigDir).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions loads the configuration without caching. It returns the
// path of the file that was read, or "" when only defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := resolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", loadError(path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", loadError(path, fmt.Errorf("failed to parse config: %w", err))
	}
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Fix the listed fields or remove them to use the defaults").
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	return &cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("native_prefix", d.NativePrefix)
	v.SetDefault("native_match", d.NativeMatch)
	v.SetDefault("skip_native", d.SkipNative)
	v.SetDefault("prompt_skip_native", d.PromptSkipNative)
	v.SetDefault("ignore_file", d.IgnoreFile)
	v.SetDefault("ignore_marker", d.IgnoreMarker)
	v.SetDefault("chain_warning_threshold", d.ChainWarningThreshold)
	v.SetDefault("max_passes", d.MaxPasses)
	v.SetDefault("unmanaged_present", d.UnmanagedPresent)
	v.SetDefault("manifest_names", d.ManifestNames)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
	v.SetDefault("ui.verbose", d.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// resolvePath applies the lookup order: explicit file, user config
// directory, then the working directory. An explicit file must exist.
func resolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'odooup config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %w", os.ErrNotExist)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if p := filepath.Join(dir, ConfigFileName); fileExists(p) {
		return p, nil
	}
	if p := filepath.Join(opts.WorkDir, LocalConfigFileName); fileExists(p) {
		return p, nil
	}
	return "", nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithIssue(issue.ConfigLoadFailedId).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the values match the expected schema").
		WithSuggestion("See 'odooup config --help' for configuration options").
		Wrap(err).
		BuildError()
}

func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file against #Config and merges it into v.
// Optional fields stay optional, so the value is decoded non-concrete into a
// map rather than a struct.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	configMap, err := cueutil.Decode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration into the user config
// directory and returns its path. An existing file is kept unless force is set.
func CreateDefaultConfig(force bool) (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	cfgPath := filepath.Join(cfgDir, ConfigFileName)
	if !force && fileExists(cfgPath) {
		return cfgPath, nil
	}
	return cfgPath, Save(DefaultConfig())
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	cfgPath := filepath.Join(cfgDir, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a CUE document accepted by the #Config schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// odooup configuration\n\n")
	fmt.Fprintf(&sb, "native_prefix: %q\n", cfg.NativePrefix)
	fmt.Fprintf(&sb, "native_match: %q\n", cfg.NativeMatch)
	fmt.Fprintf(&sb, "skip_native: %v\n", cfg.SkipNative)
	fmt.Fprintf(&sb, "prompt_skip_native: %v\n", cfg.PromptSkipNative)
	fmt.Fprintf(&sb, "ignore_file: %q\n", cfg.IgnoreFile)
	fmt.Fprintf(&sb, "ignore_marker: %q\n", cfg.IgnoreMarker)
	fmt.Fprintf(&sb, "chain_warning_threshold: %d\n", cfg.ChainWarningThreshold)
	fmt.Fprintf(&sb, "max_passes: %d\n", cfg.MaxPasses)
	fmt.Fprintf(&sb, "unmanaged_present: %v\n", cfg.UnmanagedPresent)

	sb.WriteString("manifest_names: [")
	for i, name := range cfg.ManifestNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", name)
	}
	sb.WriteString("]\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
