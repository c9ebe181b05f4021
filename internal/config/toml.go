package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice   PracticeConfig   `toml:"practice"`
	Recognizer RecognizerConfig `toml:"recognizer"`
	Store      StoreConfig      `toml:"store"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode       *string  `toml:"mode"`
	Passages   *string  `toml:"passages"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// RecognizerConfig maps the external speech-to-text command.
type RecognizerConfig struct {
	Command *string   `toml:"command"`
	Timeout *Duration `toml:"timeout"`
}

// StoreConfig maps session store settings.
type StoreConfig struct {
	Backend *string `toml:"backend"`
	Path    *string `toml:"path"`
}

// Duration is a time.Duration written in TOML as a string like "45s" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	switch {
	case err != nil:
		return err
	case v < 0:
		return fmt.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

// LoadConfig decodes the TOML file at path. A missing file yields an empty
// FileConfig; keys the config does not know about are rejected.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if extra := meta.Undecoded(); len(extra) > 0 {
		return FileConfig{}, fmt.Errorf("config %s: unknown key %q", path, extra[0].String())
	}
	return cfg, nil
}
