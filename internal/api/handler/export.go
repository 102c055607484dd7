package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
	"github.com/aakanksha-singh-hub/QueryBot/internal/export"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export serializes posted rows to CSV or XLSX and returns the file.
func Export(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "data must be non-empty and format must be csv or xlsx")
		return
	}

	var buf bytes.Buffer
	var contentType string
	switch req.Format {
	case domain.FormatCSV:
		contentType = csvContentType
		if err := export.WriteCSV(req.Data, &buf); err != nil {
			log.Error().Err(err).Msg("csv export failed")
			response.InternalError(w, "export failed")
			return
		}
	case domain.FormatXLSX:
		contentType = xlsxContentType
		if err := export.EncodeXLSX(req.Data, &buf); err != nil {
			log.Error().Err(err).Msg("xlsx export failed")
			response.InternalError(w, "export failed")
			return
		}
	}

	w.Header().Set("Content-Disposition", `attachment; filename="query-results.`+req.Format+`"`)
	response.Binary(w, contentType, buf.Bytes())
}
