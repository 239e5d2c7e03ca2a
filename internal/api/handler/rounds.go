package handler

import (
	"net/http"

	"github.com/mcoot/invisiblewalls/internal/api/response"
	"github.com/mcoot/invisiblewalls/internal/services/rounds"
)

// RoundsHandler serves the campaign round table
type RoundsHandler struct {
	roundsService *rounds.Service
}

// NewRoundsHandler creates a new rounds handler
func NewRoundsHandler(roundsService *rounds.Service) *RoundsHandler {
	return &RoundsHandler{roundsService: roundsService}
}

// List handles GET /api/v1/rounds
func (h *RoundsHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.RoundTableFromModel(h.roundsService.Table()))
}
