package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/export"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/passage"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/statsui"
)

const passagePreviewWidth = 60

var (
	historyLast int
	historyMode string

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsWords       string
	statsPlain       bool

	clearYes bool

	passagesPath string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().StringVar(&historyMode, "mode", "", "mode filter")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	records, err := loadRecords(cmd)
	if err != nil {
		return err
	}
	sessions := stats.Aggregate(records, model.StatsConfig{Mode: historyMode, Last: historyLast})
	return stats.RenderHistory(cmd.OutOrStdout(), sessions)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsWords, "words", "", "comma-separated words for per-word curves")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text output instead of the interactive UI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsMode != "" {
		if _, err := model.ParsePracticeMode(statsMode); err != nil {
			return fmt.Errorf("invalid --mode: %w", err)
		}
	}
	cfg := model.StatsConfig{
		Mode:        statsMode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Words:       statsWords,
	}

	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if statsPlain {
		report, err := stats.BuildReport(commandContext(cmd), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		return renderPlainStats(cmd.OutOrStdout(), report, cfg)
	}

	ui := statsui.NewModel(st, cfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderPlainStats(w io.Writer, report stats.Report, cfg model.StatsConfig) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderWordTable(w, report.WordAggsWindow); err != nil {
		return err
	}
	words := stats.ParseWords(cfg.Words)
	if len(words) == 0 {
		words = stats.TopWordsByFrequency(report.WordAggsWindow, 3)
	}
	return stats.RenderWordCurves(w, report.Sessions, report.WordsPerSession, words, cfg.CurveWindow)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export sessions to .xlsx or .csv",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(cmd)
	if err != nil {
		return err
	}
	if err := export.Write(args[0], records); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	logErrf("exported %d sessions to %s\n", len(records), args[0])
	return nil
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored session",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	records, err := st.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	if !clearYes {
		return fmt.Errorf("refusing to delete %d sessions without --yes", len(records))
	}
	if err := st.ReplaceAll(ctx, nil); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	logErrf("deleted %d sessions\n", len(records))
	return nil
}

func newPassagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passages",
		Short: "List the passage library",
		Args:  cobra.NoArgs,
		RunE:  runPassagesCmd,
	}
	cmd.Flags().StringVar(&passagesPath, "passages", "", "passage library file (default: XDG config dir)")
	return cmd
}

func runPassagesCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyConfig(cmd, "passages", &passagesPath, fileCfg.Practice.Passages)
	path := passagesPath
	if path == "" {
		path = config.DefaultPassagesPath()
	}
	passages, err := passage.Load(path)
	if err != nil {
		return passageLoadError(path, err)
	}
	for _, p := range passages {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.ID, preview(p.Text, passagePreviewWidth)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func loadRecords(cmd *cobra.Command) ([]model.SessionRecord, error) {
	if _, err := loadFileConfig(cmd); err != nil {
		return nil, err
	}
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer closeStore(st)
	records, err := st.LoadAll(commandContext(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return records, nil
}

func preview(text string, width int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= width {
		return flat
	}
	return string(runes[:width-3]) + "..."
}
