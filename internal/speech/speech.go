// Package speech turns a short spoken answer into text. A Recognizer is
// started when the child presses the dictation key and stopped on the
// second press; Stop yields the final transcript.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/feelio/internal/logger"
)

var (
	// ErrUnavailable means no recognizer is configured.
	ErrUnavailable = errors.New("speech recognition unavailable")

	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
)

// Recognizer is the dictation capability the learn screen consumes.
type Recognizer interface {
	Start(ctx context.Context) error

	// Stop ends capture and returns the final transcript.
	Stop(ctx context.Context) (string, error)

	Recording() bool
}

// Capture is audio being recorded.
type Capture interface {
	// Stop ends recording and returns the captured audio.
	Stop() ([]byte, error)
}

// Recorder begins audio captures.
type Recorder interface {
	Start(ctx context.Context) (Capture, error)
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Dictation is a Recognizer made of a Recorder and a Transcriber.
type Dictation struct {
	recorder    Recorder
	transcriber Transcriber
	log         *logger.Logger

	mu      sync.Mutex
	capture Capture
}

func NewDictation(r Recorder, t Transcriber, log *logger.Logger) *Dictation {
	if log == nil {
		log = logger.Nop()
	}
	return &Dictation{recorder: r, transcriber: t, log: log}
}

func (d *Dictation) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.capture != nil {
		return ErrAlreadyRecording
	}
	c, err := d.recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	d.capture = c
	d.log.Debug("dictation started")
	return nil
}

func (d *Dictation) Stop(ctx context.Context) (string, error) {
	d.mu.Lock()
	c := d.capture
	d.capture = nil
	d.mu.Unlock()

	if c == nil {
		return "", ErrNotRecording
	}

	audio, err := c.Stop()
	if err != nil {
		return "", fmt.Errorf("stop recording: %w", err)
	}
	d.log.Debug("dictation stopped", "bytes", len(audio))
	if len(audio) == 0 {
		return "", nil
	}

	text, err := d.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (d *Dictation) Recording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture != nil
}

// Unavailable is the Recognizer used when dictation is not configured.
type Unavailable struct{}

func (Unavailable) Start(context.Context) error          { return ErrUnavailable }
func (Unavailable) Stop(context.Context) (string, error) { return "", ErrUnavailable }
func (Unavailable) Recording() bool                      { return false }
