package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const documentVersion = 1

type document struct {
	Version  int                   `json:"version"`
	Sessions []model.SessionRecord `json:"sessions"`
}

// FileStore keeps every record in one JSON document. Each mutation writes a
// temporary file next to the target and renames it into place.
type FileStore struct {
	path string
}

// OpenFile prepares a JSON document store at path. The file itself is only
// created on the first write.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// Close is a no-op; the document is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// LoadAll reads the whole document.
func (s *FileStore) LoadAll(ctx context.Context) ([]model.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.SessionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, corruptf("%s: %v", s.path, err)
	}
	if doc.Version != documentVersion {
		return nil, corruptf("%s: unsupported version %d", s.path, doc.Version)
	}
	for i, rec := range doc.Sessions {
		if err := validateRecord(rec); err != nil {
			return nil, corruptf("%s: session %d: %v", s.path, i, err)
		}
	}
	if doc.Sessions == nil {
		doc.Sessions = []model.SessionRecord{}
	}
	return doc.Sessions, nil
}

// Append loads the document, adds rec and rewrites the whole document.
func (s *FileStore) Append(ctx context.Context, rec model.SessionRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, append(recs, rec))
}

// ReplaceAll rewrites the document with recs.
func (s *FileStore) ReplaceAll(ctx context.Context, recs []model.SessionRecord) error {
	for _, rec := range recs {
		if err := validateRecord(rec); err != nil {
			return err
		}
	}
	return s.write(ctx, recs)
}

func (s *FileStore) write(ctx context.Context, recs []model.SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if recs == nil {
		recs = []model.SessionRecord{}
	}
	data, err := json.MarshalIndent(document{Version: documentVersion, Sessions: recs}, "", "  ")
	if err != nil {
		return writeErr("encode", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.json")
	if err != nil {
		return writeErr("create temp file", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return writeErr("write temp file", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return writeErr("sync temp file", err)
	}
	if err := tmpFile.Close(); err != nil {
		return writeErr("close temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return writeErr("replace store", err)
	}
	return nil
}
