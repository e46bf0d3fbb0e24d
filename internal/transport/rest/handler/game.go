package handler

import (
	"brainarcade/internal/catalog"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// GameHandler exposes the parameter catalog
type GameHandler struct {
	catalog *catalog.Catalog
}

func NewGameHandler(c *catalog.Catalog) *GameHandler {
	return &GameHandler{catalog: c}
}

type gameSummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Skills           []string `json:"skills"`
	EstimatedMinutes float64  `json:"estimatedMinutes"`
	EnergyLevel      string   `json:"energyLevel"`
	MinDifficulty    float64  `json:"minDifficulty"`
	MaxDifficulty    float64  `json:"maxDifficulty"`
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games := h.catalog.Games()
	out := make([]gameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, gameSummary{
			ID:               g.ID,
			Name:             g.Name,
			Category:         g.Category,
			Skills:           g.Skills,
			EstimatedMinutes: g.EstimatedMinutes,
			EnergyLevel:      string(g.EnergyLevel),
			MinDifficulty:    g.MinDifficulty(),
			MaxDifficulty:    g.MaxDifficulty(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": h.catalog.Version(),
		"games":   out,
	})
}

// Settings handles GET /v1/games/{gameId}/settings?difficulty=
func (h *GameHandler) Settings(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	d := 0.5
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "difficulty must be a number")
			return
		}
		d = v
	}

	settings, err := h.catalog.GenerateSettings(gameID, d)
	if errors.Is(err, catalog.ErrUnknownGame) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"gameId":     gameID,
		"difficulty": d,
		"settings":   settings,
	})
}
