package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, dto.NewErrorResponse(status, kind, message))
}

// writeDomainError renders a coordinator error. Storage failures never leak
// their cause to the client.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := mapDomainError(kind)

	message := err.Error()
	if kind == domain.KindStorageError {
		message = "internal error"
	}

	writeError(w, status, string(kind), message)
}

// mapDomainError maps error kinds to HTTP status codes.
func mapDomainError(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindAccountNotFound, domain.KindTransferNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAmount, domain.KindInvalidPage, domain.KindSameAccount, domain.KindCurrencyMismatch:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
// Malformed values are reported rather than replaced so that a bad page
// window is never silently widened.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(val)
}

// parseID parses a positive int64 path identifier.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
