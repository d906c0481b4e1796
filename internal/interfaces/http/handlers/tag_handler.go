package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/internal/usecases"
)

type TagHandler struct {
	contentUsecase *usecases.ContentUsecase
}

func NewTagHandler(contentUsecase *usecases.ContentUsecase) *TagHandler {
	return &TagHandler{contentUsecase: contentUsecase}
}

// ListTags handles GET /api/tags?popular=true
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.contentUsecase.ListTags(c.Request.Context(), c.Query("popular") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, tags)
}
