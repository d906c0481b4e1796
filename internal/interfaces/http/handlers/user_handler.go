package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/internal/usecases"
)

type UserHandler struct {
	contentUsecase *usecases.ContentUsecase
}

func NewUserHandler(contentUsecase *usecases.ContentUsecase) *UserHandler {
	return &UserHandler{contentUsecase: contentUsecase}
}

// GetUser handles GET /api/users/:username
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.contentUsecase.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, user)
}
