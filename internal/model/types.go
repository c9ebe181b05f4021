// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// EditOp is one alignment step between a reference slot and a recognized slot.
type EditOp uint8

// Edit operations produced by the aligner.
const (
	Match EditOp = iota
	Substitute
	Delete
	Insert
)

func (op EditOp) String() string {
	switch op {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return fmt.Sprintf("EditOp(%d)", uint8(op))
	}
}

// WordStatus classifies a single word diagnostic.
type WordStatus uint8

// Word statuses derived from edit operations.
const (
	Correct WordStatus = iota
	Substitution
	Deletion
	Insertion
)

func (s WordStatus) String() string {
	switch s {
	case Correct:
		return "correct"
	case Substitution:
		return "substitution"
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	default:
		return fmt.Sprintf("WordStatus(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s WordStatus) MarshalText() ([]byte, error) {
	if s > Insertion {
		return nil, fmt.Errorf("unknown word status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WordStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "correct":
		*s = Correct
	case "substitution":
		*s = Substitution
	case "deletion":
		*s = Deletion
	case "insertion":
		*s = Insertion
	default:
		return fmt.Errorf("unknown word status %q", string(text))
	}
	return nil
}

// WordDiagnostic describes how one word fared in the alignment.
// Tokens are never empty, so an empty word means the side is absent.
type WordDiagnostic struct {
	ReferenceWord  string     `json:"reference,omitempty"`
	RecognizedWord string     `json:"recognized,omitempty"`
	Position       int        `json:"position"`
	Status         WordStatus `json:"status"`
}

// HasReference reports whether the diagnostic carries a reference word.
func (d WordDiagnostic) HasReference() bool { return d.ReferenceWord != "" }

// HasRecognized reports whether the diagnostic carries a recognized word.
func (d WordDiagnostic) HasRecognized() bool { return d.RecognizedWord != "" }

// ComparisonResult is the scored outcome of comparing a transcript to a reference.
type ComparisonResult struct {
	ReferenceText       string           `json:"reference_text"`
	RecognizedText      string           `json:"recognized_text"`
	Diagnostics         []WordDiagnostic `json:"diagnostics"`
	TotalReferenceWords int              `json:"total_reference_words"`
	Correct             int              `json:"correct"`
	Substitutions       int              `json:"substitutions"`
	Deletions           int              `json:"deletions"`
	Insertions          int              `json:"insertions"`
	Distance            int              `json:"distance"`
	WordErrorRate       float64          `json:"word_error_rate"`
	Accuracy            float64          `json:"accuracy"`
}

// ErrorCount returns substitutions, deletions and insertions combined.
func (r ComparisonResult) ErrorCount() int {
	return r.Substitutions + r.Deletions + r.Insertions
}

// EmptyReference reports the case where the reference had no words. The word
// error rate is then zero regardless of what was recognized.
func (r ComparisonResult) EmptyReference() bool {
	return r.TotalReferenceWords == 0
}

// Clone returns a copy that shares no slices with r.
func (r ComparisonResult) Clone() ComparisonResult {
	out := r
	if r.Diagnostics != nil {
		out.Diagnostics = make([]WordDiagnostic, len(r.Diagnostics))
		copy(out.Diagnostics, r.Diagnostics)
	}
	return out
}

// PracticeMode is the kind of practice that produced a session.
type PracticeMode uint8

// Practice modes.
const (
	Reading PracticeMode = iota
	Shadowing
)

func (m PracticeMode) String() string {
	switch m {
	case Reading:
		return "reading"
	case Shadowing:
		return "shadowing"
	default:
		return fmt.Sprintf("PracticeMode(%d)", uint8(m))
	}
}

// ParsePracticeMode parses "reading" or "shadowing".
func ParsePracticeMode(s string) (PracticeMode, error) {
	switch s {
	case "reading":
		return Reading, nil
	case "shadowing":
		return Shadowing, nil
	default:
		return 0, fmt.Errorf("unknown practice mode %q (want reading or shadowing)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m PracticeMode) MarshalText() ([]byte, error) {
	if m > Shadowing {
		return nil, fmt.Errorf("unknown practice mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PracticeMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePracticeMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Tier is a qualitative bucket derived from accuracy.
type Tier uint8

// Score tiers, best first.
const (
	Excellent Tier = iota
	Good
	Fair
	NeedsImprovement
)

func (t Tier) String() string {
	switch t {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Fair:
		return "fair"
	case NeedsImprovement:
		return "needs-improvement"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Fair:
		return "Fair"
	case NeedsImprovement:
		return "Needs Improvement"
	default:
		return t.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if t > NeedsImprovement {
		return nil, fmt.Errorf("unknown tier %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "excellent":
		*t = Excellent
	case "good":
		*t = Good
	case "fair":
		*t = Fair
	case "needs-improvement":
		*t = NeedsImprovement
	default:
		return fmt.Errorf("unknown tier %q", string(text))
	}
	return nil
}

// SessionRecord is the persisted, immutable record of one practice attempt.
type SessionRecord struct {
	ID        string           `json:"id"`
	Mode      PracticeMode     `json:"mode"`
	CreatedAt time.Time        `json:"created_at"`
	PassageID string           `json:"passage_id,omitempty"`
	Result    ComparisonResult `json:"result"`
	Tier      Tier             `json:"tier"`
	Feedback  string           `json:"feedback"`
	Duration  *float64         `json:"duration,omitempty"`
	AudioRef  string           `json:"audio_ref,omitempty"`
}

// Config defines practice settings.
type Config struct {
	Mode         PracticeMode
	PassagesPath string
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Words       string
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	ID             string
	CreatedAt      time.Time
	Mode           PracticeMode
	Accuracy       float64
	WordErrorRate  float64
	ReferenceWords int
	Errors         int
	Tier           Tier
	DurationSec    float64
}

// WordAggregate aggregates outcomes for one reference word across sessions.
type WordAggregate struct {
	Word        string
	Attempts    int
	Correct     int
	Substituted int
	Deleted     int
}
