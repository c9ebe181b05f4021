// Package config resolves tuispeak's file locations and reads its TOML config.
package config

import (
	"os"
	"path/filepath"
)

const appName = "tuispeak"

// baseDir honours an XDG base directory variable and falls back to the given
// path under the user's home. Without a home directory it falls back to ".".
func baseDir(env string, homeRel ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, homeRel...)...)
}

func configFile(name string) string {
	return filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appName, name)
}

func dataFile(name string) string {
	return filepath.Join(baseDir("XDG_DATA_HOME", ".local", "share"), appName, name)
}

// DefaultConfigPath is where `tuispeak config` writes and reads config.toml.
func DefaultConfigPath() string { return configFile("config.toml") }

// DefaultPassagesPath is the passage library read when --passages is unset.
func DefaultPassagesPath() string { return configFile("passages.txt") }

// DefaultStorePath picks the session file for a store backend.
func DefaultStorePath(backend string) string {
	name := "sessions.json"
	if backend == "sqlite" {
		name = "sessions.db"
	}
	return dataFile(name)
}
