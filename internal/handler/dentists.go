package handler

import (
	"net/http"

	"github.com/smilecare-ai/reservation-assistant/internal/clinic"
)

// DentistHandler serves the clinic roster.
type DentistHandler struct {
	roster *clinic.Roster
}

// NewDentistHandler creates a new dentist handler.
func NewDentistHandler(roster *clinic.Roster) *DentistHandler {
	return &DentistHandler{roster: roster}
}

// List handles GET /api/v1/dentists
func (h *DentistHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roster)
}
