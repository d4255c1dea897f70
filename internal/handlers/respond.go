package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/multierr"

	"github.com/tropicaldog17/irpf/internal/errors"
)

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if errs := multierr.Errors(err); len(errs) > 1 {
		resp.Error = "statement has malformed rows"
		for _, e := range errs {
			resp.Details = append(resp.Details, e.Error())
		}
	}
	respondJSON(w, statusFor(err), resp)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		malformed   *errors.ErrMalformedInput
		validation  *errors.ErrValidation
		unavailable *errors.ErrRateUnavailable
		upstream    *errors.ErrUpstreamFetch
		tooLarge    *http.MaxBytesError
	)
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.As(err, &malformed), stderrors.As(err, &validation):
		return http.StatusBadRequest
	case stderrors.As(err, &unavailable):
		return http.StatusUnprocessableEntity
	case stderrors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
