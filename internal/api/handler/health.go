package handler

import (
	"net/http"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/response"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
)

// HealthCheck reports liveness plus warehouse connectivity.
func HealthCheck(warehouse *demo.Warehouse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := warehouse.Ping(r.Context()); err != nil {
			response.Unavailable(w, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ok",
		})
	}
}
