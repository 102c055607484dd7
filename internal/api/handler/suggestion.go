package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
)

type suggestionRequest struct {
	Question string `json:"question"`
	Domain   string `json:"domain"`
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Suggestions returns question candidates for partial input or a domain.
func Suggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	suggestions := demo.Suggest(req.Question, req.Domain)
	if suggestions == nil {
		suggestions = []string{}
	}

	response.OK(w, suggestionResponse{Suggestions: suggestions})
}
