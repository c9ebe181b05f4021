package passage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const library = `# fox
The quick brown fox
jumps over the lazy dog.

She sells sea shells
by the sea shore.


# rain
The rain in Spain stays mainly in the plain.
`

func TestParse(t *testing.T) {
	passages, err := Parse(strings.NewReader(library))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}
	want := []Passage{
		{ID: "fox", Text: "The quick brown fox jumps over the lazy dog."},
		{ID: "p2", Text: "She sells sea shells by the sea shore."},
		{ID: "rain", Text: "The rain in Spain stays mainly in the plain."},
	}
	for i, p := range passages {
		if p != want[i] {
			t.Fatalf("passage %d = %+v, want %+v", i, p, want[i])
		}
	}
	if p, ok := ByID(passages, "rain"); !ok || p.ID != "rain" {
		t.Fatalf("ByID failed: %+v %v", p, ok)
	}
	if _, ok := ByID(passages, "nope"); ok {
		t.Fatalf("expected missing passage")
	}
}

func TestParseErrors(t *testing.T) {
	for name, body := range map[string]string{
		"empty":     "\n\n",
		"duplicate": "# a\none\n\n# a\ntwo\n",
		"no text":   "# lonely\n\nsomething\n",
	} {
		if _, err := Parse(strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passages.txt")
	if err := os.WriteFile(path, []byte(library), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	passages, err := Load(path)
	if err != nil || len(passages) != 3 {
		t.Fatalf("load: %d passages, %v", len(passages), err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWeights(t *testing.T) {
	passages, err := Parse(strings.NewReader(library))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	weak := map[string]struct{}{"sea": {}, "fox": {}}
	got := Weights(passages, weak, 2)
	want := []float64{3, 5, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("weights = %v, want %v", got, want)
		}
	}
}

func TestPickWeightedFavorsWeakPassages(t *testing.T) {
	passages, err := Parse(strings.NewReader(library))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	picker := NewPickerWithSeed(1)
	weak := map[string]struct{}{"sea": {}}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[picker.PickWeighted(passages, weak, 10).ID]++
	}
	if counts["p2"] < counts["fox"] || counts["p2"] < counts["rain"] {
		t.Fatalf("weak passage not favored: %v", counts)
	}
}

func TestPickUniform(t *testing.T) {
	passages := []Passage{{ID: "only", Text: "x"}}
	if got := NewPicker().Pick(passages); got.ID != "only" {
		t.Fatalf("unexpected pick: %+v", got)
	}
}
