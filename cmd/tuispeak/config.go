package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/store"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return openEditor(path)
}

// openEditor runs $EDITOR (vi when unset) on path, attached to the terminal.
func openEditor(path string) error {
	argv := strings.Fields(os.Getenv("EDITOR"))
	if len(argv) == 0 {
		argv = []string{"vi"}
	}
	editor := exec.Command(argv[0], append(argv[1:], path)...)
	editor.Stdin, editor.Stdout, editor.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := editor.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// loadFileConfig reads the config file and applies the store settings shared
// by every command.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "store", &storeBackend, fileCfg.Store.Backend)
	applyConfig(cmd, "store-path", &storePath, fileCfg.Store.Path)
	return fileCfg, nil
}

func applyRecognizerConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyConfig(cmd, "recognizer", &recognizerCommand, fileCfg.Recognizer.Command)
	if fileCfg.Recognizer.Timeout != nil {
		applyConfig(cmd, "recognizer-timeout", &recognizerTimeout, &fileCfg.Recognizer.Timeout.Duration)
	}
}

func openStore() (store.Store, error) {
	path := storePath
	if path == "" {
		path = config.DefaultStorePath(storeBackend)
	}
	st, err := store.Open(storeBackend, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return store.Locked(st), nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close session store: %v\n", err)
	}
}

// applyConfig copies a config file value into target unless the flag was
// given on the command line.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuispeak configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q          # reading or shadowing
# passages = "/path/to/passages.txt"
# focus-weak = false      # Bias passage choice toward recently missed words
# weak-top = %d           # Number of weak words to focus on
# weak-factor = %.1f      # Weight factor per weak word in a passage
# weak-window = %d        # Number of recent sessions to compute weak words

[recognizer]
# command = "whisper-cli --output-txt {audio}"
# timeout = %q

[store]
# backend = %q         # json or sqlite
# path = "/path/to/sessions.json"
`,
		defaultMode,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultRecognizerTimeout.String(),
		store.BackendJSON,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
