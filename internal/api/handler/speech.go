package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
)

type synthesizeRequest struct {
	Text string `json:"text" validate:"required"`
}

// Synthesize returns a WAV rendition of the posted text.
func Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "text is required")
		return
	}

	response.Binary(w, "audio/wav", demo.SynthesizeTone(req.Text))
}

// Transcribe accepts an audio upload. The demo backend carries no speech
// recognition engine, so a well-formed upload is answered with 503 and a
// detail the client shows as-is.
func Transcribe(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("audio_file")
	if err != nil {
		response.BadRequest(w, "audio_file upload is required")
		return
	}
	file.Close()

	response.Unavailable(w, "Speech recognition is not available on the demo backend.")
}
