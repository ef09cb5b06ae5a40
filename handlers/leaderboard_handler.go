package handlers

import (
	"net/http"

	"github.com/arenaops/arena-server/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(ls services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: ls,
	}
}

func (h *LeaderboardHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	players, err := h.leaderboardService.Players(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeaderboardHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	teams, err := h.leaderboardService.Teams(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeaderboardHandler) GetCombined(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	leaderboard, err := h.leaderboardService.Combined(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": leaderboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
