// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/webtools/tapfind/internal/classpath"
	"github.com/webtools/tapfind/internal/jvm"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// FormatText renders styled terminal tables.
	FormatText ReportFormat = "text"
	// FormatMarkdown renders Markdown through glamour.
	FormatMarkdown ReportFormat = "markdown"
	// FormatJSON renders the scan result as JSON.
	FormatJSON ReportFormat = "json"
	// FormatYAML renders the scan result as YAML.
	FormatYAML ReportFormat = "yaml"

	defaultDebounce = 500 * time.Millisecond
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidReportFormat is returned when a ReportFormat value is not recognized.
	ErrInvalidReportFormat = errors.New("invalid report format")
	// ErrInvalidJVMConfig is the sentinel error wrapped by InvalidJVMConfigError.
	ErrInvalidJVMConfig = errors.New("invalid jvm config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ReportFormat selects the scan report renderer.
	ReportFormat string

	// InvalidReportFormatError is returned when a ReportFormat value is not recognized.
	InvalidReportFormatError struct {
		Value ReportFormat
	}

	// InvalidJVMConfigError collects JVMConfig field errors.
	InvalidJVMConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It collects field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		JVM      JVMConfig      `json:"jvm" mapstructure:"jvm"`
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		Scan     ScanConfig     `json:"scan" mapstructure:"scan"`
		UI       UIConfig       `json:"ui" mapstructure:"ui"`
		Watch    WatchConfig    `json:"watch" mapstructure:"watch"`
	}

	// JVMConfig configures the execution of library modules.
	JVMConfig struct {
		// Enabled turns the invocation tier on.
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// Java is the java executable for the native engine.
		Java string `json:"java" mapstructure:"java"`
		// Engine is native, docker or podman.
		Engine jvm.Engine `json:"engine" mapstructure:"engine"`
		// Image is the JDK image used by container engines.
		Image string `json:"image" mapstructure:"image"`
		// Timeout bounds one probe run.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
		// ToolClasspath is appended after the library layer.
		ToolClasspath []string `json:"tool_classpath" mapstructure:"tool_classpath"`
	}

	// RegistryConfig selects the library mapping registries.
	RegistryConfig struct {
		Files   []string `json:"files" mapstructure:"files"`
		Builtin bool     `json:"builtin" mapstructure:"builtin"`
	}

	// ScanConfig configures workspace access.
	ScanConfig struct {
		// ArchiveCacheSize bounds the number of jars kept open.
		ArchiveCacheSize int `json:"archive_cache_size" mapstructure:"archive_cache_size"`
		// Descriptor is the project descriptor file name.
		Descriptor string `json:"descriptor" mapstructure:"descriptor"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme  `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool         `json:"verbose" mapstructure:"verbose"`
		Format      ReportFormat `json:"format" mapstructure:"format"`
	}

	// WatchConfig configures the watch command.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		Patterns []string      `json:"patterns" mapstructure:"patterns"`
		Ignore   []string      `json:"ignore" mapstructure:"ignore"`
	}
)

// IsValid returns whether the JVMConfig has valid fields.
func (c JVMConfig) IsValid() (bool, []error) {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Engine != jvm.EngineNative && strings.TrimSpace(c.Image) == "" {
		errs = append(errs, fmt.Errorf("engine %s needs an image", c.Engine))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("negative timeout %s", c.Timeout))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidJVMConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidJVMConfigError.
func (e *InvalidJVMConfigError) Error() string {
	return fmt.Sprintf("invalid jvm config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidJVMConfig for errors.Is() compatibility.
func (e *InvalidJVMConfigError) Unwrap() error { return ErrInvalidJVMConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.JVM.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.Format.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Scan.ArchiveCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("scan.archive_cache_size must be positive, got %d", c.Scan.ArchiveCacheSize))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidReportFormatError.
func (e *InvalidReportFormatError) Error() string {
	return fmt.Sprintf("invalid report format %q (valid: text, markdown, json, yaml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidReportFormatError) Unwrap() error { return ErrInvalidReportFormat }

// String returns the string representation of the ReportFormat.
func (f ReportFormat) String() string { return string(f) }

// IsValid returns whether the ReportFormat is known.
func (f ReportFormat) IsValid() (bool, []error) {
	switch f {
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return true, nil
	default:
		return false, []error{&InvalidReportFormatError{Value: f}}
	}
}

// DefaultWatchPatterns lists the files whose change can alter a scan result.
func DefaultWatchPatterns() []string {
	return []string{
		"**/*.jar",
		"**/*.class",
		"**/*.java",
		"**/.classpath",
		"**/" + classpath.DefaultDescriptorName,
		"**/META-INF/MANIFEST.MF",
		"**/WEB-INF/web.xml",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		JVM: JVMConfig{
			Enabled:       true,
			Java:          "", // JAVA_HOME, then PATH
			Engine:        jvm.EngineNative,
			Image:         jvm.DefaultImage,
			Timeout:       jvm.DefaultTimeout,
			ToolClasspath: []string{},
		},
		Registry: RegistryConfig{
			Files:   []string{},
			Builtin: true,
		},
		Scan: ScanConfig{
			ArchiveCacheSize: classpath.DefaultArchiveCacheSize,
			Descriptor:       classpath.DefaultDescriptorName,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			Format:      FormatText,
		},
		Watch: WatchConfig{
			Debounce: defaultDebounce,
			Patterns: DefaultWatchPatterns(),
			Ignore:   []string{},
		},
	}
}
