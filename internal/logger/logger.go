package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/config"
)

// Setup configures the global zerolog logger. Outside production a console
// writer goes to stderr; when a log file is configured a daily-rotated JSON
// sink is added alongside it. Returns a closer for the file sink.
func Setup(cfg config.Logging) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if os.Getenv("ENV") != "production" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		writers = append(writers, os.Stderr)
	}

	closer := io.Closer(nopCloser{})
	if cfg.File != "" {
		rotator, err := newRotator(cfg.File)
		if err != nil {
			return nil, err
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	if len(writers) == 1 {
		log.Logger = log.Output(writers[0])
	} else {
		log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
	}

	return closer, nil
}

// SetupFileOnly configures the global logger for full-screen terminal
// programs: nothing goes to the terminal. With no file configured all output
// is dropped.
func SetupFileOnly(cfg config.Logging) (io.Closer, error) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.File == "" {
		log.Logger = log.Output(io.Discard)
		return nopCloser{}, nil
	}

	rotator, err := newRotator(cfg.File)
	if err != nil {
		return nil, err
	}
	log.Logger = log.Output(rotator)
	return rotator, nil
}

func newRotator(file string) (*rotatelogs.RotateLogs, error) {
	rotator, err := rotatelogs.New(
		file+".%Y%m%d",
		rotatelogs.WithLinkName(file),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
