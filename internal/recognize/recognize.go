// Package recognize adapts speech-to-text collaborators.
//
// The engine only ever consumes a final transcript. Recognizers never
// report partial results.
package recognize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// AudioPlaceholder is replaced with the audio path in a command template.
const AudioPlaceholder = "{audio}"

// waitDelay bounds how long a cancelled command may hold its output pipes.
const waitDelay = 2 * time.Second

// ErrNoTranscript reports that the recognizer produced no usable transcript.
var ErrNoTranscript = errors.New("no transcript produced")

// Recognizer turns an audio artifact into a final transcript.
type Recognizer interface {
	Transcribe(ctx context.Context, audioRef string) (string, error)
}

// Static returns a fixed transcript.
type Static string

// Transcribe implements Recognizer.
func (s Static) Transcribe(context.Context, string) (string, error) {
	return string(s), nil
}

// File reads the transcript from a text file; the audio reference is ignored.
type File struct {
	Path string
}

// Transcribe implements Recognizer.
func (f File) Transcribe(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Command runs an external speech-to-text program and reads the transcript
// from its standard output.
type Command struct {
	// Template is split on whitespace. AudioPlaceholder is substituted with
	// the audio path; without a placeholder the path is appended.
	Template string
}

// Args expands the template for audioRef.
func (c Command) Args(audioRef string) ([]string, error) {
	parts := strings.Fields(c.Template)
	if len(parts) == 0 {
		return nil, fmt.Errorf("recognizer command is empty")
	}
	substituted := false
	for i, p := range parts {
		if strings.Contains(p, AudioPlaceholder) {
			parts[i] = strings.ReplaceAll(p, AudioPlaceholder, audioRef)
			substituted = true
		}
	}
	if !substituted {
		parts = append(parts, audioRef)
	}
	return parts, nil
}

// Transcribe implements Recognizer.
func (c Command) Transcribe(ctx context.Context, audioRef string) (string, error) {
	if audioRef == "" {
		return "", fmt.Errorf("audio reference is empty")
	}
	args, err := c.Args(audioRef)
	if err != nil {
		return "", err
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("recognizer %s: %w", args[0], ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s failed: %v: %s", ErrNoTranscript, args[0], err, msg)
		}
		return "", fmt.Errorf("%w: %s failed: %v", ErrNoTranscript, args[0], err)
	}
	transcript := strings.Join(strings.Fields(stdout.String()), " ")
	if transcript == "" {
		return "", fmt.Errorf("%w: %s printed nothing", ErrNoTranscript, args[0])
	}
	return transcript, nil
}
