// Package main provides the CLI entrypoint for tuispeak.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/passage"
	"github.com/verte-zerg/tuispeak/internal/recognize"
	"github.com/verte-zerg/tuispeak/internal/score"
	"github.com/verte-zerg/tuispeak/internal/session"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/store"
	"github.com/verte-zerg/tuispeak/internal/tui"
)

const (
	defaultMode              = "reading"
	defaultWeakTop           = 8
	defaultWeakFactor        = 2.0
	defaultWeakWindow        = 20
	defaultCurveWindow       = 20
	defaultRecognizerTimeout = time.Minute
)

var (
	storeBackend string
	storePath    string
	debugLogPath string

	practiceMode       string
	practicePassages   string
	practiceText       string
	practicePassageID  string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int
	practiceDuration   time.Duration
	practiceNoTUI      bool

	recognizedText    string
	transcriptFile    string
	audioRef          string
	recognizerCommand string
	recognizerTimeout time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "tuispeak",
		Short:             "Spoken-practice trainer: compare what you said with what you meant to say",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupDebugLog,
		RunE:              runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", store.BackendJSON, "session store backend (json or sqlite)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "session store path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&debugLogPath, "debug-log", "", "append debug logs to this file")

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "practice mode (reading or shadowing)")
	rootCmd.Flags().StringVar(&practicePassages, "passages", "", "passage library file (default: XDG config dir)")
	rootCmd.Flags().StringVar(&practiceText, "text", "", "practice this reference text instead of a library passage")
	rootCmd.Flags().StringVar(&practicePassageID, "passage-id", "", "practice the library passage with this id")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias passage choice toward recently missed words")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak words to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor per weak word in a passage")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak words")
	rootCmd.Flags().DurationVar(&practiceDuration, "duration", 0, "length of the spoken attempt (enables words/minute)")
	rootCmd.Flags().BoolVar(&practiceNoTUI, "no-tui", false, "print a text report instead of the interactive screen")
	addRecognizerFlags(rootCmd)

	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newPassagesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addRecognizerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&recognizedText, "recognized", "", "final transcript of the attempt")
	cmd.Flags().StringVar(&transcriptFile, "transcript-file", "", "read the final transcript from this file")
	cmd.Flags().StringVar(&audioRef, "audio", "", "recorded attempt to pass to the recognizer command")
	cmd.Flags().StringVar(&recognizerCommand, "recognizer", "", "speech-to-text command; {audio} is replaced with the audio path")
	cmd.Flags().DurationVar(&recognizerTimeout, "recognizer-timeout", defaultRecognizerTimeout, "time limit for the recognizer command")
}

func setupDebugLog(_ *cobra.Command, _ []string) error {
	if debugLogPath == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	if _, err := tea.LogToFile(debugLogPath, "tuispeak"); err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	return nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyConfig(cmd, "passages", &practicePassages, fileCfg.Practice.Passages)
	applyConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyRecognizerConfig(cmd, fileCfg)

	mode, err := model.ParsePracticeMode(practiceMode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}
	cfg := model.Config{
		Mode:         mode,
		PassagesPath: practicePassages,
		FocusWeak:    practiceFocusWeak,
		WeakTop:      practiceWeakTop,
		WeakFactor:   practiceWeakFactor,
		WeakWindow:   practiceWeakWindow,
	}
	if cfg.PassagesPath == "" {
		cfg.PassagesPath = config.DefaultPassagesPath()
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)

	chosen, err := choosePassage(ctx, st, cfg)
	if err != nil {
		return err
	}
	log.Printf("practice passage=%q mode=%s", chosen.ID, cfg.Mode)

	transcript, err := transcribe(ctx)
	if err != nil {
		return err
	}

	attempt := session.Attempt{
		Mode:      cfg.Mode,
		PassageID: chosen.ID,
		Duration:  practiceDuration,
		AudioRef:  audioRef,
	}

	interactive := !practiceNoTUI && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		if transcript == "" {
			return errors.New("no transcript: use --recognized, --transcript-file or --audio with a recognizer")
		}
		rec := session.NewRecord(attempt, score.Compare(chosen.Text, transcript), time.Now())
		if err := st.Append(ctx, rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return writeReport(cmd.OutOrStdout(), rec.Result, rec.Feedback, rec.Tier)
	}

	screen := tui.NewModel(tui.Options{
		Reference:  chosen.Text,
		PassageID:  chosen.ID,
		Mode:       cfg.Mode,
		Recognized: transcript,
	})
	program := tea.NewProgram(screen, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	result, ok := screen.Result()
	if !ok {
		logErrln("attempt discarded")
		return nil
	}
	rec := session.NewRecord(attempt, result, time.Now())
	if err := st.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logErrf("saved session %s (%s, %.1f%%)\n", rec.ID, rec.Tier.Label(), rec.Result.Accuracy)
	return nil
}

// choosePassage resolves the reference text from --text, --passage-id or the
// passage library.
func choosePassage(ctx context.Context, st store.Store, cfg model.Config) (passage.Passage, error) {
	if strings.TrimSpace(practiceText) != "" {
		return passage.Passage{Text: practiceText}, nil
	}
	passages, err := passage.Load(cfg.PassagesPath)
	if err != nil {
		return passage.Passage{}, passageLoadError(cfg.PassagesPath, err)
	}
	if practicePassageID != "" {
		p, ok := passage.ByID(passages, practicePassageID)
		if !ok {
			return passage.Passage{}, fmt.Errorf("passage %q not found in %s (run: tuispeak passages)", practicePassageID, cfg.PassagesPath)
		}
		return p, nil
	}

	picker := passage.NewPicker()
	if !cfg.FocusWeak {
		return picker.Pick(passages), nil
	}
	records, err := st.LoadAll(ctx)
	if err != nil {
		logErrf("failed to load sessions for weak-word focus: %v\n", err)
		return picker.Pick(passages), nil
	}
	weak := stats.RecentWeakWords(records, cfg.Mode.String(), cfg.WeakWindow, cfg.WeakTop)
	if len(weak) == 0 {
		logErrln("no missed words recorded yet; picking a random passage")
		return picker.Pick(passages), nil
	}
	return picker.PickWeighted(passages, weak, cfg.WeakFactor), nil
}

// transcribe runs the configured recognizer. An empty transcript with a nil
// error means none was configured.
func transcribe(ctx context.Context) (string, error) {
	rec, err := resolveRecognizer(recognizerOptions{
		Recognized:     recognizedText,
		TranscriptFile: transcriptFile,
		Audio:          audioRef,
		Command:        recognizerCommand,
	})
	if err != nil || rec == nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, recognizerTimeout)
	defer cancel()
	started := time.Now()
	transcript, err := rec.Transcribe(ctx, audioRef)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe attempt: %w", err)
	}
	log.Printf("transcribed in %s", time.Since(started).Round(time.Millisecond))
	return transcript, nil
}

type recognizerOptions struct {
	Recognized     string
	TranscriptFile string
	Audio          string
	Command        string
}

// resolveRecognizer picks the transcript source in flag precedence order.
// It returns nil when no source was given.
func resolveRecognizer(opts recognizerOptions) (recognize.Recognizer, error) {
	switch {
	case strings.TrimSpace(opts.Recognized) != "":
		return recognize.Static(opts.Recognized), nil
	case opts.TranscriptFile != "":
		return recognize.File{Path: opts.TranscriptFile}, nil
	case opts.Audio != "":
		if strings.TrimSpace(opts.Command) == "" {
			return nil, errors.New("--audio requires a recognizer command (--recognizer or [recognizer] command in config)")
		}
		return recognize.Command{Template: opts.Command}, nil
	}
	return nil, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	if practiceDuration < 0 {
		return fmt.Errorf("--duration must be >= 0")
	}
	if recognizerTimeout <= 0 {
		return fmt.Errorf("--recognizer-timeout must be > 0")
	}
	return nil
}

func passageLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load passages: %v", err),
		fmt.Sprintf("expected passage library at: %s", path),
		"Write one passage per paragraph (optionally headed by \"# id\"),",
		"or practice a single text with: tuispeak --text \"...\"",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}
