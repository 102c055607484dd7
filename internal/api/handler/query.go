package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

var validate = validator.New()

// QueryHandler answers natural-language questions against the demo
// warehouse.
type QueryHandler struct {
	warehouse *demo.Warehouse
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(warehouse *demo.Warehouse) *QueryHandler {
	return &QueryHandler{warehouse: warehouse}
}

type queryRequest struct {
	Query  string `json:"query" validate:"required"`
	Domain string `json:"domain"`
}

type queryResponse struct {
	SQLQuery    string           `json:"sql_query"`
	Results     domain.ResultSet `json:"results"`
	Explanation string           `json:"explanation"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// Execute translates a question to SQL, runs it and returns the rows.
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "query is required")
		return
	}

	if req.Domain != "" {
		if _, ok := domain.LookupDomain(req.Domain); !ok {
			response.BadRequest(w, "unknown domain: "+req.Domain)
			return
		}
	}

	sqlStr, explanation, err := demo.Translate(req.Query, req.Domain)
	if err != nil {
		var unrec *demo.ErrUnrecognized
		if errors.As(err, &unrec) {
			response.BadRequest(w, unrec.Error())
			return
		}
		response.InternalError(w, "failed to translate question")
		return
	}

	results, err := h.warehouse.Query(r.Context(), sqlStr)
	if err != nil {
		log.Error().Err(err).Str("sql", sqlStr).Msg("query execution failed")
		response.InternalError(w, "query execution failed")
		return
	}
	if results == nil {
		results = domain.ResultSet{}
	}

	response.OK(w, queryResponse{
		SQLQuery:    sqlStr,
		Results:     results,
		Explanation: explanation,
		Suggestions: followUps(req.Query, req.Domain),
	})
}

// followUps picks up to three starter questions the user has not just asked.
func followUps(question, domainID string) []string {
	var out []string
	for _, s := range demo.Suggest("", domainID) {
		if s == question {
			continue
		}
		out = append(out, s)
		if len(out) == 3 {
			break
		}
	}
	return out
}
