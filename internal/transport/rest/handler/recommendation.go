package handler

import (
	"brainarcade/internal/model"
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// Recommender generates recommendation sets
type Recommender interface {
	Generate(ctx context.Context, userID string, pc model.PlayContext) model.RecommendationSet
}

// RecommendationHandler handles recommendation endpoints
type RecommendationHandler struct {
	recommender Recommender
}

func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender}
}

// Generate handles POST /v1/users/{userId}/recommendations. The body is optional.
func (h *RecommendationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req model.RecommendationRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, h.recommender.Generate(r.Context(), userID, req.Context))
}
