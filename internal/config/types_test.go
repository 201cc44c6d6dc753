// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		scheme ColorScheme
		want   bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"DARK", false},
	} {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.scheme.IsValid()
			if ok != tt.want {
				t.Errorf("IsValid() = %v, want %v", ok, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme)) {
				t.Errorf("error should wrap ErrInvalidColorScheme, got %v", errs)
			}
		})
	}
}

func TestMatchMode_IsValid(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		mode MatchMode
		want bool
	}{
		{MatchSegment, true},
		{MatchSubstring, true},
		{"", false},
		{"prefix", false},
	} {
		t.Run(string(tt.mode), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.mode.IsValid()
			if ok != tt.want {
				t.Errorf("IsValid() = %v, want %v", ok, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidMatchMode)) {
				t.Errorf("error should wrap ErrInvalidMatchMode, got %v", errs)
			}
		})
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   int
	}{
		{name: "defaults", mutate: func(*Config) {}, want: 0},
		{name: "blank marker", mutate: func(c *Config) { c.IgnoreMarker = "  " }, want: 1},
		{name: "zero threshold", mutate: func(c *Config) { c.ChainWarningThreshold = 0 }, want: 1},
		{name: "several", mutate: func(c *Config) {
			c.NativeMatch = "x"
			c.UI.ColorScheme = "x"
			c.Watch.Debounce = "x"
			c.MaxPasses = -1
		}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			ok, errs := cfg.IsValid()
			if tt.want == 0 {
				if !ok || len(errs) != 0 {
					t.Fatalf("IsValid() = %v, %v", ok, errs)
				}
				return
			}
			var inv *InvalidConfigError
			if ok || len(errs) != 1 || !errors.As(errs[0], &inv) {
				t.Fatalf("IsValid() = %v, %v; want one InvalidConfigError", ok, errs)
			}
			if len(inv.FieldErrors) != tt.want {
				t.Errorf("got %d field errors, want %d: %v", len(inv.FieldErrors), tt.want, inv)
			}
			if !errors.Is(errs[0], ErrInvalidConfig) {
				t.Error("should wrap ErrInvalidConfig")
			}
		})
	}
}
