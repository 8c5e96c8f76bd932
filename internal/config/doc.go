// SPDX-License-Identifier: MPL-2.0

// Package config handles tapfind configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/tapfind/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/tapfind/config.cue on
// macOS, %APPDATA%\tapfind\config.cue on Windows), or from an explicit file.
// Files are validated against the embedded #Config schema (config_schema.cue)
// and merged over the defaults. TAPFIND_* environment variables override file
// values; a .env file in the base directory supplies variables that are not
// already set in the environment.
package config
