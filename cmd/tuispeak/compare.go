package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuispeak/internal/feedback"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/score"
	"github.com/verte-zerg/tuispeak/internal/session"
)

var (
	compareJSON bool
	compareSave bool
	compareMode string

	batchJobs int
	batchSave bool
	batchMode string
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare REFERENCE RECOGNIZED",
		Short: "Compare a reference text with a transcript",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompareCmd,
	}
	cmd.Flags().BoolVar(&compareJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&compareSave, "save", false, "append the result to the session store")
	cmd.Flags().StringVar(&compareMode, "mode", defaultMode, "practice mode recorded with --save")
	return cmd
}

type compareOutput struct {
	model.ComparisonResult
	Feedback string     `json:"feedback"`
	Tier     model.Tier `json:"tier"`
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	mode, err := model.ParsePracticeMode(compareMode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}
	result := score.Compare(args[0], args[1])
	message, tier := feedback.Generate(result)

	if compareSave {
		if _, err := loadFileConfig(cmd); err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)
		rec := session.NewRecord(session.Attempt{Mode: mode}, result, time.Now())
		if err := st.Append(commandContext(cmd), rec); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if compareJSON {
		data, err := json.MarshalIndent(compareOutput{ComparisonResult: result, Feedback: message, Tier: tier}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return writeReport(out, result, message, tier)
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Compare tab-separated reference/transcript pairs (FILE may be -)",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatchCmd,
	}
	cmd.Flags().IntVar(&batchJobs, "jobs", runtime.NumCPU(), "number of pairs compared concurrently")
	cmd.Flags().BoolVar(&batchSave, "save", false, "append every result to the session store")
	cmd.Flags().StringVar(&batchMode, "mode", defaultMode, "practice mode recorded with --save")
	return cmd
}

type batchPair struct {
	Line       int
	Reference  string
	Recognized string
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	if batchJobs < 1 {
		return fmt.Errorf("--jobs must be >= 1")
	}
	mode, err := model.ParsePracticeMode(batchMode)
	if err != nil {
		return fmt.Errorf("invalid --mode: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open batch file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only batch input.
				_ = cerr
			}
		}()
		in = file
	}
	pairs, err := parseBatch(in)
	if err != nil {
		return err
	}

	var save func(context.Context, model.SessionRecord) error
	if batchSave {
		if _, err := loadFileConfig(cmd); err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore(st)
		save = st.Append
	}

	results, err := compareBatch(commandContext(cmd), pairs, batchJobs, mode, save)
	if err != nil {
		return err
	}
	return writeBatchReport(cmd.OutOrStdout(), pairs, results)
}

// parseBatch reads reference<TAB>recognized lines. Blank lines and lines
// starting with '#' are skipped.
func parseBatch(r io.Reader) ([]batchPair, error) {
	var pairs []batchPair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want reference<TAB>recognized, got %d fields", lineNo, len(fields))
		}
		pairs = append(pairs, batchPair{Line: lineNo, Reference: fields[0], Recognized: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch input: %w", err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("batch input has no pairs")
	}
	return pairs, nil
}

// compareBatch scores every pair with at most jobs concurrent comparisons.
// Results, and saved records, follow input order. Every record shares the
// batch start time.
func compareBatch(ctx context.Context, pairs []batchPair, jobs int, mode model.PracticeMode, save func(context.Context, model.SessionRecord) error) ([]model.SessionRecord, error) {
	results := make([]model.SessionRecord, len(pairs))
	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = session.Assess(session.Attempt{Mode: mode}, p.Reference, p.Recognized, started)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if save == nil {
		return results, nil
	}
	for i, rec := range results {
		if err := save(ctx, rec); err != nil {
			return nil, fmt.Errorf("line %d: failed to save session: %w", pairs[i].Line, err)
		}
	}
	return results, nil
}

func writeBatchReport(w io.Writer, pairs []batchPair, results []model.SessionRecord) error {
	var accSum float64
	refWords, errs := 0, 0
	for i, rec := range results {
		r := rec.Result
		accSum += r.Accuracy
		refWords += r.TotalReferenceWords
		errs += r.Distance
		if _, err := fmt.Fprintf(w, "line %d\t%.1f%%\tWER %.3f\t%s\n", pairs[i].Line, r.Accuracy, r.WordErrorRate, rec.Tier.Label()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	corpusWER := 0.0
	if refWords > 0 {
		corpusWER = float64(errs) / float64(refWords)
	}
	_, err := fmt.Fprintf(w, "pairs: %d  mean accuracy: %.1f%%  corpus WER: %.3f\n",
		len(results), accSum/float64(len(results)), corpusWER)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
