package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/session"
)

func sampleRecords() []model.SessionRecord {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	return []model.SessionRecord{
		session.Assess(session.Attempt{Mode: model.Reading, PassageID: "p1", Duration: 4 * time.Second},
			"the quick brown fox", "the quick brown", now),
		session.Assess(session.Attempt{Mode: model.Shadowing},
			"good morning", "good morning", now.Add(time.Minute)),
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	records := sampleRecords()
	if err := Write(path, records); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != len(SessionHeaders) || rows[0][0] != "ID" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	first := rows[1]
	want := map[int]string{
		0:  records[0].ID,
		1:  "2025-06-02T10:30:00Z",
		2:  "reading",
		3:  "p1",
		6:  "4",
		9:  "1",
		11: "0.25",
		12: "75",
		13: "Good",
		15: "4",
	}
	for col, v := range want {
		if first[col] != v {
			t.Fatalf("column %s = %q, want %q", SessionHeaders[col], first[col], v)
		}
	}
	if rows[2][15] != "" {
		t.Fatalf("missing duration should export empty, got %q", rows[2][15])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.xlsx")
	records := sampleRecords()
	if err := Write(path, records); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sessionsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("session rows = %d, want 3", len(rows))
	}
	if rows[1][0] != records[0].ID || rows[2][2] != "shadowing" {
		t.Fatalf("unexpected session rows %v", rows)
	}

	words, err := f.GetRows(wordsSheet)
	if err != nil {
		t.Fatalf("GetRows words: %v", err)
	}
	// header + the quick brown fox good morning
	if len(words) != 7 {
		t.Fatalf("word rows = %d, want 7", len(words))
	}
	if words[1][0] != "fox" || words[1][4] != "1" {
		t.Fatalf("weakest word should come first, got %v", words[1])
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "out.json"), sampleRecords()); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}
