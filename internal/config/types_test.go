// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/webtools/tapfind/internal/jvm"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   ColorScheme
		want    bool
		wantErr bool
	}{
		{ColorSchemeAuto, true, false},
		{ColorSchemeDark, true, false},
		{ColorSchemeLight, true, false},
		{"", false, true},
		{"solarized", false, true},
	}
	for _, tt := range tests {
		valid, errs := tt.value.IsValid()
		if valid != tt.want {
			t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
		}
		if tt.wantErr && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidColorScheme)) {
			t.Errorf("ColorScheme(%q).IsValid() errs = %v", tt.value, errs)
		}
	}
}

func TestReportFormat_IsValid(t *testing.T) {
	t.Parallel()

	for _, f := range []ReportFormat{FormatText, FormatMarkdown, FormatJSON, FormatYAML} {
		if valid, _ := f.IsValid(); !valid {
			t.Errorf("%s should be valid", f)
		}
	}
	valid, errs := ReportFormat("html").IsValid()
	if valid || !errors.Is(errs[0], ErrInvalidReportFormat) {
		t.Errorf("html.IsValid() = %v, %v", valid, errs)
	}
}

func TestJVMConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  JVMConfig
		want bool
	}{
		{"native without image", JVMConfig{Engine: jvm.EngineNative}, true},
		{"docker with image", JVMConfig{Engine: jvm.EngineDocker, Image: jvm.DefaultImage}, true},
		{"podman without image", JVMConfig{Engine: jvm.EnginePodman, Image: " "}, false},
		{"unknown engine", JVMConfig{Engine: "kvm"}, false},
		{"negative timeout", JVMConfig{Engine: jvm.EngineNative, Timeout: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.cfg.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v (%v), want %v", valid, errs, tt.want)
			}
			if !valid && !errors.Is(errs[0], ErrInvalidJVMConfig) {
				t.Errorf("error does not wrap ErrInvalidJVMConfig: %v", errs[0])
			}
		})
	}
}
