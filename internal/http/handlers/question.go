package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prepstack-backend/internal/http/response"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type QuestionHandler struct {
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// GET /questions/:category/:id
func (qh *QuestionHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("a positive numeric id"))
		return
	}
	page, err := qh.questionService.Get(c.Request.Context(), c.Param("category"), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /questions/:category/window?start=&id=
func (qh *QuestionHandler) Window(c *gin.Context) {
	start, err := intQuery(c, "start", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pagination", err)
		return
	}
	id, err := intQuery(c, "id", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_pagination", err)
		return
	}
	page, err := qh.questionService.Window(c.Request.Context(), c.Param("category"), start, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /questions/:category/random?id=
func (qh *QuestionHandler) Random(c *gin.Context) {
	id, err := intQuery(c, "id", 0)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	page, err := qh.questionService.Random(c.Request.Context(), c.Param("category"), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, page)
}
