package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"wellatlas/internal/domain"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log
// only.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, "Conflict", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("[HTTP] Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writePublicError hides every share-path failure behind 404 so callers
// cannot distinguish a missing resource from a denied one.
func writePublicError(w http.ResponseWriter, err error) {
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrForbidden) && !errors.Is(err, domain.ErrInvalidInput) {
		log.Printf("[HTTP] Internal error on public route: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}

func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}
