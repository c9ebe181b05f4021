package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/session"
)

var baseTime = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

func record(minute int, mode model.PracticeMode, reference, recognized string) model.SessionRecord {
	return session.Assess(session.Attempt{Mode: mode}, reference, recognized, baseTime.Add(time.Duration(minute)*time.Minute))
}

func TestSessionMetrics(t *testing.T) {
	rec := record(0, model.Reading, "the quick brown fox", "the quick brown")
	acc, wer, wpm := SessionMetrics(rec)
	if acc != 75 || wer != 0.25 || wpm != 0 {
		t.Fatalf("unexpected metrics: %v %v %v", acc, wer, wpm)
	}
	secs := 30.0
	rec.Duration = &secs
	if _, _, wpm := SessionMetrics(rec); wpm != 6 {
		t.Fatalf("wpm = %v, want 6", wpm)
	}
}

func TestFilterOrdersAndLimits(t *testing.T) {
	records := []model.SessionRecord{
		record(5, model.Reading, "a", "a"),
		record(1, model.Shadowing, "a", "b"),
		record(3, model.Reading, "a b", "a"),
		record(9, model.Reading, "a", ""),
	}
	got := Filter(records, model.StatsConfig{Mode: "reading", Last: 2})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != records[0].ID || got[1].ID != records[3].ID {
		t.Fatalf("unexpected order: %s %s", got[0].ID, got[1].ID)
	}
	since := baseTime.Add(4 * time.Minute)
	got = Filter(records, model.StatsConfig{Since: &since})
	if len(got) != 2 {
		t.Fatalf("expected 2 records since minute 4, got %d", len(got))
	}
}

func TestAggregate(t *testing.T) {
	secs := 12.5
	rec := record(0, model.Shadowing, "one two three", "one too three four")
	rec.Duration = &secs
	aggs := Aggregate([]model.SessionRecord{rec}, model.StatsConfig{})
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	a := aggs[0]
	if a.ID != rec.ID || a.Mode != model.Shadowing || a.ReferenceWords != 3 || a.Errors != 2 || a.DurationSec != 12.5 {
		t.Fatalf("unexpected aggregate: %+v", a)
	}
}

func TestWordAggregates(t *testing.T) {
	records := []model.SessionRecord{
		record(0, model.Reading, "red fish blue fish", "red fish blue"),
		record(1, model.Reading, "red fish", "bed fish"),
	}
	aggs := WordAggregates(records)
	byWord := map[string]model.WordAggregate{}
	for _, a := range aggs {
		byWord[a.Word] = a
	}
	if len(aggs) != 3 || aggs[0].Word != "blue" {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	if fish := byWord["fish"]; fish.Attempts != 3 || fish.Correct != 2 || fish.Deleted != 1 {
		t.Fatalf("unexpected fish aggregate: %+v", fish)
	}
	if red := byWord["red"]; red.Attempts != 2 || red.Substituted != 1 {
		t.Fatalf("unexpected red aggregate: %+v", red)
	}

	per := WordAggregatesBySession(records)
	if got := per[records[1].ID]["red"]; got.Substituted != 1 || got.Attempts != 1 {
		t.Fatalf("unexpected per-session aggregate: %+v", got)
	}
}

func TestSelectWeakWords(t *testing.T) {
	aggs := []model.WordAggregate{
		{Word: "good", Attempts: 4, Correct: 4},
		{Word: "bad", Attempts: 4, Correct: 1, Substituted: 3},
		{Word: "meh", Attempts: 2, Correct: 1, Deleted: 1},
		{Word: "awful", Attempts: 2, Correct: 0, Deleted: 2},
	}
	weak := SelectWeakWords(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak words, got %v", weak)
	}
	for _, w := range []string{"awful", "bad"} {
		if _, ok := weak[w]; !ok {
			t.Fatalf("expected %q in weak set %v", w, weak)
		}
	}
	if all := SelectWeakWords(aggs, 0); len(all) != 3 {
		t.Fatalf("perfect words must not be weak: %v", all)
	}
}

func TestRecentWeakWords(t *testing.T) {
	records := []model.SessionRecord{
		record(0, model.Reading, "alpha beta", "beta"),
		record(1, model.Reading, "gamma delta", "gamma delta"),
	}
	if weak := RecentWeakWords(records, "", 1, 5); len(weak) != 0 {
		t.Fatalf("last session was perfect, got %v", weak)
	}
	weak := RecentWeakWords(records, "reading", 2, 5)
	if _, ok := weak["alpha"]; !ok || len(weak) != 1 {
		t.Fatalf("expected alpha to be weak, got %v", weak)
	}
}

func TestTopWordsByFrequency(t *testing.T) {
	aggs := []model.WordAggregate{
		{Word: "b", Attempts: 4},
		{Word: "a", Attempts: 4},
		{Word: "c", Attempts: 1},
	}
	top := TopWordsByFrequency(aggs, 2)
	if len(top) != 2 || top[0] != "a" || top[1] != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("MovingAverage = %v, want %v", got, want)
		}
	}
	if got := MovingAverage([]float64{1, 2}, 0); got[1] != 2 {
		t.Fatalf("window 0 should copy input: %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 1, 1}); got != "+++" {
		t.Fatalf("flat sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("sparkline = %q", got)
	}
}

func TestRenderSummaryAndHistory(t *testing.T) {
	records := []model.SessionRecord{
		record(0, model.Reading, "the quick brown fox", "the quick brown fox"),
		record(1, model.Shadowing, "the quick brown fox", "the quick brown"),
	}
	sessions := Aggregate(records, model.StatsConfig{})
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Words practiced: 8", "Avg Accuracy: 87.50%", "Best Accuracy: 100.00%", "Excellent 1", "Good 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderHistory(&buf, sessions); err != nil {
		t.Fatalf("render history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "Date") {
		t.Fatalf("unexpected history:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "shadowing") || !strings.Contains(lines[2], "75.0%") || !strings.Contains(lines[2], "Good") {
		t.Fatalf("unexpected history row: %q", lines[2])
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil || !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("empty summary: %q %v", buf.String(), err)
	}
}

func TestHistoryKeepsStoredTier(t *testing.T) {
	rec := record(0, model.Reading, "the quick brown fox", "the quick brown")
	rec.Tier = model.Excellent
	sessions := Aggregate([]model.SessionRecord{rec}, model.StatsConfig{})
	if sessions[0].Tier != model.Excellent {
		t.Fatalf("aggregate tier = %v, want excellent", sessions[0].Tier)
	}

	row := HistoryRow(sessions[0])
	if row[5] != "75.0%" || row[6] != "Excellent" {
		t.Fatalf("history row should show the stored tier: %q", row)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "Excellent 1") || !strings.Contains(buf.String(), "Good 0") {
		t.Fatalf("summary should count the stored tier:\n%s", buf.String())
	}
}

func TestRenderWordTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderWordTable(&buf, []model.WordAggregate{
		{Word: "fox", Attempts: 2, Correct: 1, Deleted: 1},
		{Word: "the", Attempts: 2, Correct: 2},
	})
	if err != nil {
		t.Fatalf("render word table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "Per-Word (Windowed)" {
		t.Fatalf("unexpected title: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "fox") || !strings.Contains(lines[2], "50.00%") {
		t.Fatalf("weakest word should come first: %q", lines[2])
	}
}

func TestNewReport(t *testing.T) {
	records := []model.SessionRecord{
		record(0, model.Reading, "one two", "one"),
		record(1, model.Reading, "three four", "three four"),
		record(2, model.Shadowing, "five six", "five"),
	}
	report := NewReport(records, model.StatsConfig{Mode: "reading", CurveWindow: 1})
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != records[1].ID {
		t.Fatalf("unexpected window ids: %v", report.WindowSessionIDs)
	}
	if len(report.WordAggsAll) != 4 || len(report.WordAggsWindow) != 2 {
		t.Fatalf("unexpected word aggregates: %d / %d", len(report.WordAggsAll), len(report.WordAggsWindow))
	}
	if _, ok := report.WordsPerSession[records[0].ID]["two"]; !ok {
		t.Fatalf("expected per-session word stats")
	}
}

func TestParseWords(t *testing.T) {
	got := ParseWords(" Fox, ,the,  Quick ")
	want := []string{"fox", "the", "quick"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("ParseWords = %v, want %v", got, want)
	}
	if ParseWords("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
