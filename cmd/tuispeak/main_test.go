package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tuispeak/internal/config"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/recognize"
	"github.com/verte-zerg/tuispeak/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseBatch(t *testing.T) {
	input := "# header\nthe cat\tthe hat\n\nred fish\tred fish\r\n"
	pairs, err := parseBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	if pairs[0].Line != 2 || pairs[0].Recognized != "the hat" {
		t.Fatalf("unexpected first pair %+v", pairs[0])
	}
	if pairs[1].Line != 4 || pairs[1].Recognized != "red fish" {
		t.Fatalf("unexpected second pair %+v", pairs[1])
	}

	if _, err := parseBatch(strings.NewReader("no tab here\n")); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line error, got %v", err)
	}
	if _, err := parseBatch(strings.NewReader("\n# only comments\n")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestCompareBatchKeepsOrder(t *testing.T) {
	pairs := make([]batchPair, 50)
	for i := range pairs {
		pairs[i] = batchPair{Line: i + 1, Reference: "one two three four", Recognized: strings.Repeat("one ", i%5)}
	}
	var saved []model.SessionRecord
	save := func(_ context.Context, rec model.SessionRecord) error {
		saved = append(saved, rec)
		return nil
	}
	results, err := compareBatch(context.Background(), pairs, 4, model.Reading, save)
	if err != nil {
		t.Fatalf("compareBatch: %v", err)
	}
	if len(saved) != len(pairs) {
		t.Fatalf("saved = %d, want %d", len(saved), len(pairs))
	}
	for i, rec := range results {
		want := min(i%5, 1)
		if rec.Result.Correct != want {
			t.Fatalf("result %d correct = %d, want %d", i, rec.Result.Correct, want)
		}
		if saved[i].ID != rec.ID {
			t.Fatalf("record %d saved out of input order", i)
		}
		if !saved[i].CreatedAt.Equal(saved[0].CreatedAt) {
			t.Fatalf("record %d created at %v, want the batch time %v", i, saved[i].CreatedAt, saved[0].CreatedAt)
		}
	}
}

func TestResolveRecognizer(t *testing.T) {
	rec, err := resolveRecognizer(recognizerOptions{})
	if err != nil || rec != nil {
		t.Fatalf("expected no recognizer, got %v, %v", rec, err)
	}
	rec, err = resolveRecognizer(recognizerOptions{Recognized: "hi", TranscriptFile: "x.txt"})
	if err != nil {
		t.Fatalf("resolveRecognizer: %v", err)
	}
	if _, ok := rec.(recognize.Static); !ok {
		t.Fatalf("--recognized should win, got %T", rec)
	}
	rec, _ = resolveRecognizer(recognizerOptions{TranscriptFile: "x.txt", Audio: "a.wav", Command: "stt"})
	if _, ok := rec.(recognize.File); !ok {
		t.Fatalf("--transcript-file should beat --audio, got %T", rec)
	}
	rec, _ = resolveRecognizer(recognizerOptions{Audio: "a.wav", Command: "stt {audio}"})
	if _, ok := rec.(recognize.Command); !ok {
		t.Fatalf("expected command recognizer, got %T", rec)
	}
	if _, err := resolveRecognizer(recognizerOptions{Audio: "a.wav"}); err == nil {
		t.Fatalf("expected error for --audio without command")
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	result := model.ComparisonResult{
		ReferenceText:  "the quick brown fox",
		RecognizedText: "the quick brown",
		Diagnostics: []model.WordDiagnostic{
			{ReferenceWord: "the", RecognizedWord: "the", Position: 0, Status: model.Correct},
			{ReferenceWord: "fox", Position: 3, Status: model.Deletion},
		},
		TotalReferenceWords: 4,
		Correct:             3,
		Deletions:           1,
		Distance:            1,
		WordErrorRate:       0.25,
		Accuracy:            75,
	}
	if err := writeReport(&buf, result, "Good job!", model.Good); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Accuracy:   75.0%  WER: 0.250  Tier: Good", "3 correct, 0 misrecognized, 1 skipped, 0 extra", "  - 3   fox"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestCompareCommandJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "compare", "--json", "The quick brown fox", "the quick brown")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if decoded["word_error_rate"] != 0.25 || decoded["accuracy"] != 75.0 || decoded["tier"] != "good" {
		t.Fatalf("unexpected output %v", decoded)
	}
}

func TestPracticeWithoutTUISavesSession(t *testing.T) {
	dir := isolate(t)
	storeFile := filepath.Join(dir, "sessions.json")
	out, err := run(t, "", "--no-tui", "--store-path", storeFile, "--mode", "shadowing",
		"--text", "she sells sea shells", "--recognized", "she sells see shells")
	if err != nil {
		t.Fatalf("practice: %v", err)
	}
	if !strings.Contains(out, "~ 2   sea -> see") {
		t.Fatalf("report missing substitution:\n%s", out)
	}

	st, err := store.OpenFile(storeFile)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	records, err := st.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 1 || records[0].Mode != model.Shadowing || records[0].Result.Substitutions != 1 {
		t.Fatalf("unexpected records %+v", records)
	}

	hist, err := run(t, "", "history", "--store-path", storeFile)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(hist, "shadowing") || !strings.Contains(hist, "Good") {
		t.Fatalf("history missing session:\n%s", hist)
	}
}

func TestPracticeWithoutTranscriptFails(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "", "--no-tui", "--store-path", filepath.Join(dir, "s.json"), "--text", "hello there")
	if err == nil || !strings.Contains(err.Error(), "no transcript") {
		t.Fatalf("expected missing transcript error, got %v", err)
	}
}

func TestBatchSaveAndClear(t *testing.T) {
	dir := isolate(t)
	storeFile := filepath.Join(dir, "sessions.db")
	input := "good morning\tgood morning\nthe cat sat\tthe hat sat\n"
	out, err := run(t, input, "batch", "-", "--save", "--jobs", "2", "--store", "sqlite", "--store-path", storeFile)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("batch output lines = %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "line 1\t100.0%") || !strings.HasPrefix(lines[1], "line 2\t66.7%") {
		t.Fatalf("unexpected batch lines:\n%s", out)
	}
	if !strings.Contains(lines[2], "pairs: 2") || !strings.Contains(lines[2], "corpus WER: 0.200") {
		t.Fatalf("unexpected aggregate line %q", lines[2])
	}

	if _, err := run(t, "", "clear", "--store", "sqlite", "--store-path", storeFile); err == nil {
		t.Fatalf("clear without --yes should fail")
	}
	if _, err := run(t, "", "clear", "--yes", "--store", "sqlite", "--store-path", storeFile); err != nil {
		t.Fatalf("clear: %v", err)
	}
	hist, err := run(t, "", "history", "--store", "sqlite", "--store-path", storeFile)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(hist, "No sessions found.") {
		t.Fatalf("expected empty history, got:\n%s", hist)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("template should decode: %v", err)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	storeFile := filepath.Join(dir, "from-config.json")
	body := "[store]\npath = \"" + storeFile + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := run(t, "", "compare", "--save", "a b", "a b"); err != nil {
		t.Fatalf("compare --save: %v", err)
	}
	if _, err := os.Stat(storeFile); err != nil {
		t.Fatalf("store from config not written: %v", err)
	}
}

func TestPassagesCommand(t *testing.T) {
	dir := isolate(t)
	lib := filepath.Join(dir, "passages.txt")
	text := "# greet\nGood morning everyone.\n\nThe rain in Spain stays mainly in the plain.\n"
	if err := os.WriteFile(lib, []byte(text), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := run(t, "", "passages", "--passages", lib)
	if err != nil {
		t.Fatalf("passages: %v", err)
	}
	want := "greet\tGood morning everyone.\np2\tThe rain in Spain stays mainly in the plain.\n"
	if out != want {
		t.Fatalf("passages output = %q, want %q", out, want)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("a  b\nc", 10); got != "a b c" {
		t.Fatalf("preview = %q", got)
	}
	if got := preview("abcdefghijkl", 8); got != "abcde..." {
		t.Fatalf("preview = %q", got)
	}
}
