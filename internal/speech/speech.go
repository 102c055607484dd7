// Package speech bridges the chat session to audio: microphone capture sent
// to the backend for transcription, and backend-synthesized audio played
// through a single local sink.
package speech

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotSupported is returned immediately when the platform offers no way to
// capture or play audio. No recording state is entered.
var ErrNotSupported = errors.New("speech is not supported on this system")

// ErrNotRecording is returned by Stop when no recording is active.
var ErrNotRecording = errors.New("no recording in progress")

// SynthesisError wraps a failure to produce audio from text.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// PlaybackError wraps a failure to play already-synthesized audio. It is
// deliberately distinct from SynthesisError: the audio exists, the sink
// refused it.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("audio playback failed: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Recorder captures microphone audio. Start acquires the microphone; Stop
// releases it and finalizes the buffered audio rather than discarding it.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
}

// Player renders one audio payload through the platform's audio sink.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}
