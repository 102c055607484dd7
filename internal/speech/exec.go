package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// recorderCommands lists capture tools in preference order, each producing a
// WAV file at the final argument position.
var recorderCommands = [][]string{
	{"arecord", "-q", "-f", "cd", "-t", "wav"},
	{"rec", "-q", "-t", "wav"},
	{"sox", "-q", "-d", "-t", "wav"},
	{"ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default", "-y"},
}

// playerCommands lists playback tools in preference order; the audio file
// path is appended.
var playerCommands = [][]string{
	{"aplay", "-q"},
	{"afplay"},
	{"paplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

func findCommand(candidates [][]string) ([]string, bool) {
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c, true
		}
	}
	return nil, false
}

// ExecRecorder captures audio by running the platform's capture tool,
// writing a WAV file that Stop reads back.
type ExecRecorder struct {
	command []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

// NewExecRecorder discovers a capture tool. Returns ErrNotSupported when
// none is installed.
func NewExecRecorder() (*ExecRecorder, error) {
	command, ok := findCommand(recorderCommands)
	if !ok {
		return nil, ErrNotSupported
	}
	return &ExecRecorder{command: command}, nil
}

// Start acquires the microphone by launching the capture process.
func (r *ExecRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return fmt.Errorf("recording already in progress")
	}

	f, err := os.CreateTemp("", "querybot-rec-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create capture file: %w", err)
	}
	path := f.Name()
	f.Close()

	args := append(append([]string{}, r.command[1:]...), path)
	cmd := exec.CommandContext(ctx, r.command[0], args...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to start %s: %w", r.command[0], err)
	}

	r.cmd = cmd
	r.path = path
	return nil
}

// Stop terminates the capture process and returns the buffered audio. The
// temp file is always removed.
func (r *ExecRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	cmd, path := r.cmd, r.path
	r.cmd, r.path = nil, ""
	r.mu.Unlock()

	if cmd == nil {
		return nil, ErrNotRecording
	}
	defer os.Remove(path)

	// Interrupt lets the tool finalize the WAV header before exiting.
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
	}

	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		cmd.Process.Kill()
		<-done
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("capture produced no audio")
	}
	return audio, nil
}

// ExecPlayer plays audio by handing a temp file to the platform's playback
// tool.
type ExecPlayer struct {
	command []string
}

// NewExecPlayer discovers a playback tool. Returns ErrNotSupported when none
// is installed.
func NewExecPlayer() (*ExecPlayer, error) {
	command, ok := findCommand(playerCommands)
	if !ok {
		return nil, ErrNotSupported
	}
	return &ExecPlayer{command: command}, nil
}

// Play blocks until playback finishes.
func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	dir, err := os.MkdirTemp("", "querybot-play-")
	if err != nil {
		return fmt.Errorf("failed to stage audio: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "speech.wav")
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return fmt.Errorf("failed to stage audio: %w", err)
	}

	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Debug().Err(err).Str("output", string(out)).Msg("playback tool failed")
		return fmt.Errorf("%s failed: %w", p.command[0], err)
	}
	return nil
}
