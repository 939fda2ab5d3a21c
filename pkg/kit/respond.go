package kit

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the single error envelope every handler speaks.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Success:   false,
		Message:   msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// WriteErr routes any error through the envelope. kit.Error values keep their
// status and message; everything else collapses to a 500.
func WriteErr(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if errors.As(err, &e) {
		WriteError(w, r, e.Status, e.Message)
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
}
