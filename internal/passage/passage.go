// Package passage loads practice passages from a library file.
//
// Passages are separated by blank lines. A passage may start with a
// "# id" line naming it; unnamed passages are numbered p1, p2, ... by their
// position in the file.
package passage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Passage is one reference text.
type Passage struct {
	ID   string
	Text string
}

// Load reads a passage library from path.
func Load(path string) ([]Passage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only passage library.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads a passage library from r.
func Parse(r io.Reader) ([]Passage, error) {
	var (
		passages []Passage
		id       string
		lines    []string
		seen     = map[string]struct{}{}
	)
	flush := func() error {
		if len(lines) == 0 {
			if id != "" {
				return fmt.Errorf("passage %q has no text", id)
			}
			return nil
		}
		if id == "" {
			id = fmt.Sprintf("p%d", len(passages)+1)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate passage id %q", id)
		}
		seen[id] = struct{}{}
		passages = append(passages, Passage{ID: id, Text: strings.Join(lines, " ")})
		id = ""
		lines = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "#") && len(lines) == 0 && id == "":
			id = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		default:
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("passage library is empty")
	}
	return passages, nil
}

// ByID returns the passage with the given id.
func ByID(passages []Passage, id string) (Passage, bool) {
	for _, p := range passages {
		if p.ID == id {
			return p, true
		}
	}
	return Passage{}, false
}
