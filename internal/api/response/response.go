package response

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error envelope: every failure carries a detail field the
// client can surface verbatim.
type errorBody struct {
	Detail string `json:"detail"`
}

// JSON sends data as a JSON response.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(data)
}

// OK sends a 200 OK response with data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Binary sends raw bytes with the given content type.
func Binary(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Error sends an error response with a detail message.
func Error(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(errorBody{Detail: detail})
}

// BadRequest sends a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadRequest, detail)
}

// NotFound sends a 404 Not Found response.
func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, detail)
}

// InternalError sends a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, detail string) {
	Error(w, http.StatusInternalServerError, detail)
}

// Unavailable sends a 503 Service Unavailable response.
func Unavailable(w http.ResponseWriter, detail string) {
	Error(w, http.StatusServiceUnavailable, detail)
}
