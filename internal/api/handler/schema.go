package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
)

// Schema returns the warehouse DDL plus the domain catalog.
func Schema(warehouse *demo.Warehouse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ddl, err := warehouse.SchemaDDL(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to read schema")
			response.InternalError(w, "failed to read schema")
			return
		}

		response.OK(w, map[string]any{
			"schema":  ddl,
			"domains": domain.Catalog(),
		})
	}
}
