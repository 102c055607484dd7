package speech

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// SpeechAPI is the slice of the backend client the bridge needs.
type SpeechAPI interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}

// Bridge wires the two independent speech capabilities: microphone-to-text
// and text-to-audio. The playback sink is a singleton guarded by a mutex, so
// a second synthesis is only loaded once the in-flight one has resolved.
type Bridge struct {
	api      SpeechAPI
	recorder Recorder
	player   Player

	recMu     sync.Mutex
	recording bool

	playMu sync.Mutex
}

// NewBridge creates a bridge. recorder and player may be nil when the
// platform offers no speech capability; the corresponding operations then
// fail immediately with ErrNotSupported.
func NewBridge(api SpeechAPI, recorder Recorder, player Player) *Bridge {
	return &Bridge{api: api, recorder: recorder, player: player}
}

// Recording reports whether a capture is in progress.
func (b *Bridge) Recording() bool {
	b.recMu.Lock()
	defer b.recMu.Unlock()
	return b.recording
}

// StartRecording acquires the microphone. Without a recorder it fails
// immediately with ErrNotSupported and no recording state is entered.
func (b *Bridge) StartRecording(ctx context.Context) error {
	if b.recorder == nil {
		return ErrNotSupported
	}

	b.recMu.Lock()
	defer b.recMu.Unlock()
	if b.recording {
		return nil
	}
	if err := b.recorder.Start(ctx); err != nil {
		return err
	}
	b.recording = true
	return nil
}

// StopAndTranscribe finalizes the recording, sends the buffered audio to the
// backend and returns the recognized text. Stopping transcribes rather than
// discards.
func (b *Bridge) StopAndTranscribe(ctx context.Context) (string, error) {
	if b.recorder == nil {
		return "", ErrNotSupported
	}

	b.recMu.Lock()
	wasRecording := b.recording
	b.recording = false
	b.recMu.Unlock()

	if !wasRecording {
		return "", ErrNotRecording
	}

	audio, err := b.recorder.Stop()
	if err != nil {
		return "", err
	}

	text, err := b.api.Transcribe(ctx, bytes.NewReader(audio), "recording.wav")
	if err != nil {
		log.Error().Err(err).Msg("transcription failed")
		return "", err
	}
	return text, nil
}

// Speak synthesizes text through the backend and plays the result. A
// synthesis failure and a playback failure are reported as distinct error
// types so the UI can phrase them differently.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	if b.player == nil {
		return &PlaybackError{Err: ErrNotSupported}
	}

	audio, err := b.api.SynthesizeSpeech(ctx, text)
	if err != nil {
		return &SynthesisError{Err: err}
	}

	b.playMu.Lock()
	defer b.playMu.Unlock()
	if err := b.player.Play(ctx, audio); err != nil {
		return &PlaybackError{Err: err}
	}
	return nil
}
