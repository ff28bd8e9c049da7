package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prepstack-backend/internal/http/response"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// POST /progress/points
// body: { "amount": 10 }
func (ph *ProgressHandler) AwardPoints(c *gin.Context) {
	var req struct {
		Amount *int `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_points", err)
		return
	}
	res, err := ph.progressService.AwardPoints(c.Request.Context(), *req.Amount)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /progress/streak
func (ph *ProgressHandler) UpdateStreak(c *gin.Context) {
	res, err := ph.progressService.UpdateStreak(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /progress/counters
// body: { "column": "coding_questions_attempted" }
func (ph *ProgressHandler) IncrementCounter(c *gin.Context) {
	var req struct {
		Column string `json:"column"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_column", err)
		return
	}
	res, err := ph.progressService.IncrementCounter(c.Request.Context(), req.Column)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /progress/:category
func (ph *ProgressHandler) Overview(c *gin.Context) {
	ov, err := ph.progressService.Overview(c.Request.Context(), c.Param("category"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, ov)
}
