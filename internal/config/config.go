// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/webtools/tapfind/internal/cuefile"
	"github.com/webtools/tapfind/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "tapfind"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. TAPFIND_JVM_ENGINE.
	EnvPrefix = "TAPFIND"
	// DotEnvFile is read from the base directory when present.
	DotEnvFile = ".env"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the tapfind configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the configuration with default options.
func Load(ctx context.Context) (*Config, error) {
	return NewProvider().Load(ctx, LoadOptions{})
}

// LoadWithPath is Load that also returns the file the configuration was read
// from ("" when only defaults and environment applied).
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state or the process environment.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'tapfind config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		for _, candidate := range []string{
			filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
			filepath.Join(opts.BaseDir, ConfigFileName+"."+ConfigFileExt),
		} {
			if fileExists(candidate) {
				resolvedPath = candidate
				break
			}
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	if err := applyEnv(v, opts); err != nil {
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the TAPFIND_* environment variables and the .env file").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("jvm.enabled", d.JVM.Enabled)
	v.SetDefault("jvm.java", d.JVM.Java)
	v.SetDefault("jvm.engine", string(d.JVM.Engine))
	v.SetDefault("jvm.image", d.JVM.Image)
	v.SetDefault("jvm.timeout", d.JVM.Timeout)
	v.SetDefault("jvm.tool_classpath", d.JVM.ToolClasspath)
	v.SetDefault("registry.files", d.Registry.Files)
	v.SetDefault("registry.builtin", d.Registry.Builtin)
	v.SetDefault("scan.archive_cache_size", d.Scan.ArchiveCacheSize)
	v.SetDefault("scan.descriptor", d.Scan.Descriptor)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.format", string(d.UI.Format))
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.patterns", d.Watch.Patterns)
	v.SetDefault("watch.ignore", d.Watch.Ignore)
}

// applyEnv overrides known keys from TAPFIND_* variables. Variables from the
// process environment win over the .env file.
func applyEnv(v *viper.Viper, opts LoadOptions) error {
	env := map[string]string{}

	dotenv := filepath.Join(opts.BaseDir, DotEnvFile)
	if fileExists(dotenv) {
		vars, err := godotenv.Read(dotenv)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("read environment file").
				WithResource(dotenv).
				WithSuggestion("Use KEY=value lines, e.g. TAPFIND_JVM_ENGINE=docker").
				Wrap(err).
				BuildError()
		}
		for k, val := range vars {
			env[k] = val
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		if k, val, ok := strings.Cut(kv, "="); ok {
			env[k] = val
		}
	}

	for _, key := range v.AllKeys() {
		val, ok := env[EnvName(key)]
		if !ok {
			continue
		}
		if isListKey(key) {
			v.Set(key, splitList(val))
			continue
		}
		v.Set(key, val)
	}
	return nil
}

// EnvName returns the environment variable overriding a config key, e.g.
// "jvm.tool_classpath" becomes TAPFIND_JVM_TOOL_CLASSPATH.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func isListKey(key string) bool {
	switch key {
	case "jvm.tool_classpath", "registry.files", "watch.patterns", "watch.ignore":
		return true
	default:
		return false
	}
}

// splitList splits on the OS path list separator or commas.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == filepath.ListSeparator || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. Fields are optional, so concreteness is not required.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	res, err := cuefile.DecodeFile[map[string]any](configSchema, path, "#Config", cuefile.WithConcrete(false))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes cfg to the config directory, creating it when needed.
func Save(cfg *Config) (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// tapfind configuration file\n\n")

	sb.WriteString("jvm: {\n")
	fmt.Fprintf(&sb, "\tenabled: %v\n", cfg.JVM.Enabled)
	if cfg.JVM.Java != "" {
		fmt.Fprintf(&sb, "\tjava: %q\n", cfg.JVM.Java)
	}
	fmt.Fprintf(&sb, "\tengine: %q\n", cfg.JVM.Engine)
	fmt.Fprintf(&sb, "\timage: %q\n", cfg.JVM.Image)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.JVM.Timeout.String())
	writeList(&sb, "\t", "tool_classpath", cfg.JVM.ToolClasspath)
	sb.WriteString("}\n")

	sb.WriteString("\nregistry: {\n")
	writeList(&sb, "\t", "files", cfg.Registry.Files)
	fmt.Fprintf(&sb, "\tbuiltin: %v\n", cfg.Registry.Builtin)
	sb.WriteString("}\n")

	sb.WriteString("\nscan: {\n")
	fmt.Fprintf(&sb, "\tarchive_cache_size: %d\n", cfg.Scan.ArchiveCacheSize)
	fmt.Fprintf(&sb, "\tdescriptor: %q\n", cfg.Scan.Descriptor)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.UI.Format)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	writeList(&sb, "\t", "patterns", cfg.Watch.Patterns)
	writeList(&sb, "\t", "ignore", cfg.Watch.Ignore)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, indent, name string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(sb, "%s%s: []\n", indent, name)
		return
	}
	fmt.Fprintf(sb, "%s%s: [\n", indent, name)
	for _, item := range items {
		fmt.Fprintf(sb, "%s\t%q,\n", indent, item)
	}
	fmt.Fprintf(sb, "%s]\n", indent)
}
