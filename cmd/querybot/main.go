package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/backend"
	"github.com/aakanksha-singh-hub/QueryBot/internal/config"
	"github.com/aakanksha-singh-hub/QueryBot/internal/history"
	"github.com/aakanksha-singh-hub/QueryBot/internal/logger"
	"github.com/aakanksha-singh-hub/QueryBot/internal/session"
	"github.com/aakanksha-singh-hub/QueryBot/internal/speech"
	"github.com/aakanksha-singh-hub/QueryBot/internal/tui"

	exportpkg "github.com/aakanksha-singh-hub/QueryBot/internal/export"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to the file sink only.
	logClose, err := logger.SetupFileOnly(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logClose.Close()

	log.Info().Str("backend", cfg.Backend.BaseURL).Msg("starting querybot")

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)

	sess := session.New()
	dispatcher := session.NewDispatcher(sess, client)
	suggester := session.NewSuggester(sess, client, session.DefaultDebounce)
	exporter := exportpkg.NewService(client, cfg.Export.Dir, cfg.Backend.ExportTimeout)

	var browser tui.HistoryBrowser
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Error().Err(err).Msg("history disabled: could not open store")
		} else {
			defer store.Close()
			sess.SetObserver(store)
			store.SessionReset(sess.ID(), nil)
			browser = store
		}
	}

	bridge := newBridge(client)

	m := tui.New(sess, dispatcher, suggester, exporter, bridge, client, browser)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Reactive suggestions arrive from a timer goroutine; forward them into
	// the program loop.
	suggester.SetOnUpdate(func(items []string) {
		p.Send(tui.SuggestionsMsg{Items: items})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "querybot: %v\n", err)
		os.Exit(1)
	}
}

// newBridge wires whatever audio tooling the host offers. Missing tools are
// fine: the bridge reports ErrNotSupported per capability.
func newBridge(client *backend.Client) *speech.Bridge {
	var recorder speech.Recorder
	if r, err := speech.NewExecRecorder(); err == nil {
		recorder = r
	} else {
		log.Info().Msg("no audio recorder found, voice input disabled")
	}

	var player speech.Player
	if p, err := speech.NewExecPlayer(); err == nil {
		player = p
	} else {
		log.Info().Msg("no audio player found, voice output disabled")
	}

	return speech.NewBridge(client, recorder, player)
}
