// Package session assembles practice attempts into immutable records.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuispeak/internal/feedback"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/score"
)

// Attempt carries the metadata of one practice attempt. Duration and
// AudioRef come from the recording collaborator and are stored verbatim,
// except that a Duration of zero or less means "not measured" and is stored
// as an absent duration.
type Attempt struct {
	Mode      model.PracticeMode
	PassageID string
	Duration  time.Duration
	AudioRef  string
}

// NewRecord snapshots result into a new session record with a fresh id.
func NewRecord(attempt Attempt, result model.ComparisonResult, now time.Time) model.SessionRecord {
	msg, tier := feedback.Generate(result)
	rec := model.SessionRecord{
		ID:        uuid.NewString(),
		Mode:      attempt.Mode,
		CreatedAt: now.UTC(),
		PassageID: attempt.PassageID,
		Result:    result.Clone(),
		Tier:      tier,
		Feedback:  msg,
		AudioRef:  attempt.AudioRef,
	}
	if attempt.Duration > 0 {
		secs := attempt.Duration.Seconds()
		rec.Duration = &secs
	}
	return rec
}

// Assess compares reference against recognized and builds the record.
func Assess(attempt Attempt, reference, recognized string, now time.Time) model.SessionRecord {
	return NewRecord(attempt, score.Compare(reference, recognized), now)
}
