package api

import (
	"errors"
	"net/http"

	"github.com/abhisek/vitality/internal/progression"
)

// errorBody is the JSON shape of every error response. Kind is stable and
// machine-readable; Error is for display.
type errorBody struct {
	Error          string `json:"error"`
	Kind           string `json:"kind"`
	Detail         string `json:"detail,omitempty"`
	RequiredEnergy *int   `json:"requiredEnergy,omitempty"`
	CurrentEnergy  *int   `json:"currentEnergy,omitempty"`
}

// writeError maps engine errors onto status codes, carrying structured
// fields through verbatim.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *progression.InsufficientEnergyError
	switch {
	case errors.As(err, &ie):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:          "Insufficient energy",
			Kind:           "insufficient_energy",
			RequiredEnergy: &ie.Required,
			CurrentEnergy:  &ie.Current,
		})
	case errors.Is(err, progression.ErrBlockedByBurnout):
		writeJSON(w, http.StatusForbidden, errorBody{
			Error: "Blocked by burnout",
			Kind:  "blocked_by_burnout",
		})
	case errors.Is(err, progression.ErrInvalidActivityType):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "Invalid activity type",
			Kind:   "invalid_activity_type",
			Detail: err.Error(),
		})
	case errors.Is(err, progression.ErrInvalidReward),
		errors.Is(err, progression.ErrInvalidEnergyCost),
		errors.Is(err, progression.ErrInvalidOverride),
		errors.Is(err, progression.ErrInvalidTickKind):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "Invalid request",
			Kind:   "invalid_request",
			Detail: err.Error(),
		})
	case errors.Is(err, progression.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{
			Error: "User not found",
			Kind:  "user_not_found",
		})
	case errors.Is(err, progression.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: "User already onboarded",
			Kind:  "user_exists",
		})
	default:
		s.log.WithField("path", r.URL.Path).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: "Internal error",
			Kind:  "internal",
		})
	}
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:  "Invalid request",
		Kind:   "invalid_request",
		Detail: detail,
	})
}
