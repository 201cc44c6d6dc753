// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// MatchSegment compares the native prefix on whole path segments.
	// Defined locally to avoid coupling config to internal/resolve; the
	// command layer converts at the boundary.
	MatchSegment MatchMode = "segment"
	// MatchSubstring matches the native prefix anywhere in a namespace.
	MatchSubstring MatchMode = "substring"

	defaultIgnoreMarker = "# Autogenerated file content from here ... DO NOT MODIFY"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMatchMode is returned when a MatchMode value is not recognized.
	ErrInvalidMatchMode = errors.New("invalid match mode")
	// ErrInvalidDebounce is returned when watch.debounce is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid debounce")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// MatchMode selects how native_prefix is compared to namespaces.
	MatchMode string

	// InvalidMatchModeError wraps ErrInvalidMatchMode.
	InvalidMatchModeError struct {
		Value MatchMode
	}

	// InvalidDebounceError wraps ErrInvalidDebounce.
	InvalidDebounceError struct {
		Value string
		Cause error
	}

	// InvalidConfigError collects every field error of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// NativePrefix identifies the namespaces shipped with the framework itself.
		NativePrefix string    `json:"native_prefix" mapstructure:"native_prefix"`
		NativeMatch  MatchMode `json:"native_match" mapstructure:"native_match"`
		// SkipNative is the default for --skip-native.
		SkipNative bool `json:"skip_native" mapstructure:"skip_native"`
		// PromptSkipNative asks interactively when --skip-native is not given.
		PromptSkipNative bool `json:"prompt_skip_native" mapstructure:"prompt_skip_native"`

		IgnoreFile   string `json:"ignore_file" mapstructure:"ignore_file"`
		IgnoreMarker string `json:"ignore_marker" mapstructure:"ignore_marker"`

		// ChainWarningThreshold is the chain length, in edges, above which a warning is shown.
		ChainWarningThreshold int `json:"chain_warning_threshold" mapstructure:"chain_warning_threshold"`
		// MaxPasses caps reconciliation passes; 0 means run until nothing changes.
		MaxPasses int `json:"max_passes" mapstructure:"max_passes"`
		// UnmanagedPresent treats namespaces without a whitelist as fully checked out.
		UnmanagedPresent bool `json:"unmanaged_present" mapstructure:"unmanaged_present"`

		// ManifestNames are the manifest file names scanned for. Only .cue and
		// .toml names can be decoded; __manifest__.py must be converted first.
		ManifestNames []string    `json:"manifest_names" mapstructure:"manifest_names"`
		Watch         WatchConfig `json:"watch" mapstructure:"watch"`
		UI            UIConfig    `json:"ui" mapstructure:"ui"`
	}

	// WatchConfig configures --watch mode.
	WatchConfig struct {
		// Debounce is a Go duration string such as "500ms".
		Debounce string `json:"debounce" mapstructure:"debounce"`
	}

	// UIConfig holds terminal output preferences.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		NativePrefix:          "vendor/odoo",
		NativeMatch:           MatchSegment,
		SkipNative:            true,
		PromptSkipNative:      true,
		IgnoreFile:            ".dockerignore",
		IgnoreMarker:          defaultIgnoreMarker,
		ChainWarningThreshold: 5,
		MaxPasses:             0,
		UnmanagedPresent:      true,
		ManifestNames:         []string{"__manifest__.cue", "__manifest__.toml"},
		Watch:                 WatchConfig{Debounce: "500ms"},
		UI:                    UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// DebounceDuration parses Watch.Debounce.
func (c *Config) DebounceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, &InvalidDebounceError{Value: c.Watch.Debounce, Cause: err}
	}
	if d <= 0 {
		return 0, &InvalidDebounceError{Value: c.Watch.Debounce}
	}
	return d, nil
}

// IsValid checks the constraints the CUE schema does not express.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.NativeMatch.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.IgnoreMarker) == "" {
		errs = append(errs, fmt.Errorf("ignore_marker: must not be blank"))
	}
	if c.ChainWarningThreshold < 1 {
		errs = append(errs, fmt.Errorf("chain_warning_threshold: must be at least 1, got %d", c.ChainWarningThreshold))
	}
	if c.MaxPasses < 0 {
		errs = append(errs, fmt.Errorf("max_passes: must not be negative, got %d", c.MaxPasses))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid reports whether cs is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (m MatchMode) String() string { return string(m) }

// IsValid reports whether m is one of the defined match modes.
func (m MatchMode) IsValid() (bool, []error) {
	switch m {
	case MatchSegment, MatchSubstring:
		return true, nil
	default:
		return false, []error{&InvalidMatchModeError{Value: m}}
	}
}

func (e *InvalidMatchModeError) Error() string {
	return fmt.Sprintf("invalid match mode %q (valid: segment, substring)", e.Value)
}

func (e *InvalidMatchModeError) Unwrap() error { return ErrInvalidMatchMode }

func (e *InvalidDebounceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid watch.debounce %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid watch.debounce %q: must be positive", e.Value)
}

// Unwrap exposes both the sentinel and the parse error.
func (e *InvalidDebounceError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidDebounce, e.Cause}
	}
	return []error{ErrInvalidDebounce}
}
