package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prepstack-backend/internal/http/response"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GET /leaderboard?offset=&limit=
func (lh *LeaderboardHandler) List(c *gin.Context) {
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pagination", err)
		return
	}
	limit, err := intQuery(c, "limit", services.DefaultLeaderboardLimit)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pagination", err)
		return
	}
	page, err := lh.leaderboardService.Page(c.Request.Context(), offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}
