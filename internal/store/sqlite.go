package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/tuispeak/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore keeps one row per record. Row order is insertion order.
type SQLiteStore struct {
	db *sqlx.DB
}

type sessionRow struct {
	ID                  string          `db:"id"`
	Mode                string          `db:"mode"`
	CreatedAt           string          `db:"created_at"`
	PassageID           string          `db:"passage_id"`
	ReferenceText       string          `db:"reference_text"`
	RecognizedText      string          `db:"recognized_text"`
	Diagnostics         string          `db:"diagnostics"`
	TotalReferenceWords int             `db:"total_reference_words"`
	Correct             int             `db:"correct"`
	Substitutions       int             `db:"substitutions"`
	Deletions           int             `db:"deletions"`
	Insertions          int             `db:"insertions"`
	Distance            int             `db:"distance"`
	WordErrorRate       float64         `db:"word_error_rate"`
	Accuracy            float64         `db:"accuracy"`
	Tier                string          `db:"tier"`
	Feedback            string          `db:"feedback"`
	DurationSec         sql.NullFloat64 `db:"duration_sec"`
	AudioRef            string          `db:"audio_ref"`
}

const insertSessionSQL = `INSERT INTO sessions (id, mode, created_at, passage_id, reference_text, recognized_text,
	diagnostics, total_reference_words, correct, substitutions, deletions, insertions, distance,
	word_error_rate, accuracy, tier, feedback, duration_sec, audio_ref)
	VALUES (:id, :mode, :created_at, :passage_id, :reference_text, :recognized_text,
	:diagnostics, :total_reference_words, :correct, :substitutions, :deletions, :insertions, :distance,
	:word_error_rate, :accuracy, :tier, :feedback, :duration_sec, :audio_ref)`

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	info, statErr := os.Stat(path)
	existed := statErr == nil && info.Size() > 0
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	st := &SQLiteStore{db: db}
	if err := st.migrate(); err != nil {
		_ = db.Close()
		if existed {
			return nil, corruptf("%s: %v", path, err)
		}
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			created_at TEXT NOT NULL,
			passage_id TEXT NOT NULL,
			reference_text TEXT NOT NULL,
			recognized_text TEXT NOT NULL,
			diagnostics TEXT NOT NULL,
			total_reference_words INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			substitutions INTEGER NOT NULL,
			deletions INTEGER NOT NULL,
			insertions INTEGER NOT NULL,
			distance INTEGER NOT NULL,
			word_error_rate REAL NOT NULL,
			accuracy REAL NOT NULL,
			tier TEXT NOT NULL,
			feedback TEXT NOT NULL,
			duration_sec REAL,
			audio_ref TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate store: %w", err)
		}
	}
	return nil
}

// Append inserts rec as the last row.
func (s *SQLiteStore) Append(ctx context.Context, rec model.SessionRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return insertRecord(ctx, tx, rec)
	})
}

// ReplaceAll deletes every row and inserts recs in one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, recs []model.SessionRecord) error {
	for _, rec := range recs {
		if err := validateRecord(rec); err != nil {
			return err
		}
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return err
		}
		for _, rec := range recs {
			if err := insertRecord(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAll returns every row in insertion order.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]model.SessionRecord, error) {
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, mode, created_at, passage_id, reference_text,
		recognized_text, diagnostics, total_reference_words, correct, substitutions, deletions,
		insertions, distance, word_error_rate, accuracy, tier, feedback, duration_sec, audio_ref
		FROM sessions ORDER BY seq ASC`); err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	recs := make([]model.SessionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, corruptf("session %s: %v", row.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return writeErr("begin", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return writeErr("insert", err)
	}
	if err = tx.Commit(); err != nil {
		return writeErr("commit", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, rec model.SessionRecord) error {
	row, err := rowFromRecord(rec)
	if err != nil {
		return err
	}
	_, err = tx.NamedExecContext(ctx, insertSessionSQL, row)
	return err
}

func rowFromRecord(rec model.SessionRecord) (sessionRow, error) {
	diags := rec.Result.Diagnostics
	if diags == nil {
		diags = []model.WordDiagnostic{}
	}
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return sessionRow{}, err
	}
	row := sessionRow{
		ID:                  rec.ID,
		Mode:                rec.Mode.String(),
		CreatedAt:           rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		PassageID:           rec.PassageID,
		ReferenceText:       rec.Result.ReferenceText,
		RecognizedText:      rec.Result.RecognizedText,
		Diagnostics:         string(diagJSON),
		TotalReferenceWords: rec.Result.TotalReferenceWords,
		Correct:             rec.Result.Correct,
		Substitutions:       rec.Result.Substitutions,
		Deletions:           rec.Result.Deletions,
		Insertions:          rec.Result.Insertions,
		Distance:            rec.Result.Distance,
		WordErrorRate:       rec.Result.WordErrorRate,
		Accuracy:            rec.Result.Accuracy,
		Tier:                rec.Tier.String(),
		Feedback:            rec.Feedback,
		AudioRef:            rec.AudioRef,
	}
	if rec.Duration != nil {
		row.DurationSec = sql.NullFloat64{Float64: *rec.Duration, Valid: true}
	}
	return row, nil
}

func (r sessionRow) record() (model.SessionRecord, error) {
	mode, err := model.ParsePracticeMode(r.Mode)
	if err != nil {
		return model.SessionRecord{}, err
	}
	var tier model.Tier
	if err := tier.UnmarshalText([]byte(r.Tier)); err != nil {
		return model.SessionRecord{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return model.SessionRecord{}, err
	}
	var diags []model.WordDiagnostic
	if err := json.Unmarshal([]byte(r.Diagnostics), &diags); err != nil {
		return model.SessionRecord{}, fmt.Errorf("diagnostics: %w", err)
	}
	rec := model.SessionRecord{
		ID:        r.ID,
		Mode:      mode,
		CreatedAt: createdAt,
		PassageID: r.PassageID,
		Result: model.ComparisonResult{
			ReferenceText:       r.ReferenceText,
			RecognizedText:      r.RecognizedText,
			Diagnostics:         diags,
			TotalReferenceWords: r.TotalReferenceWords,
			Correct:             r.Correct,
			Substitutions:       r.Substitutions,
			Deletions:           r.Deletions,
			Insertions:          r.Insertions,
			Distance:            r.Distance,
			WordErrorRate:       r.WordErrorRate,
			Accuracy:            r.Accuracy,
		},
		Tier:     tier,
		Feedback: r.Feedback,
		AudioRef: r.AudioRef,
	}
	if r.DurationSec.Valid {
		d := r.DurationSec.Float64
		rec.Duration = &d
	}
	return rec, nil
}
