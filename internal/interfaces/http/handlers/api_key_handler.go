package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"write-space.backend/internal/domain/entities"
	"write-space.backend/internal/interfaces/http/middleware"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/internal/usecases"
	"write-space.backend/pkg/utils"
)

type ApiKeyHandler struct {
	apiKeyUsecase *usecases.ApiKeyUsecase
}

func NewApiKeyHandler(apiKeyUsecase *usecases.ApiKeyUsecase) *ApiKeyHandler {
	return &ApiKeyHandler{
		apiKeyUsecase: apiKeyUsecase,
	}
}

// CreateApiKey creates a new API key. The secret is only returned here.
func (h *ApiKeyHandler) CreateApiKey(c *gin.Context) {
	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	resp, err := h.apiKeyUsecase.CreateApiKey(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusCreated, resp)
}

// ListApiKeys lists API keys for the current user
func (h *ApiKeyHandler) ListApiKeys(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	apiKeys, err := h.apiKeyUsecase.ListApiKeys(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, apiKeys)
}

// RegenerateApiKey issues a new secret for an existing key and resets its usage
func (h *ApiKeyHandler) RegenerateApiKey(c *gin.Context) {
	userID, apiKeyID, ok := h.keyParams(c)
	if !ok {
		return
	}

	resp, err := h.apiKeyUsecase.RegenerateApiKey(c.Request.Context(), userID, apiKeyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, resp)
}

// UpdateApiKey toggles is_active
func (h *ApiKeyHandler) UpdateApiKey(c *gin.Context) {
	userID, apiKeyID, ok := h.keyParams(c)
	if !ok {
		return
	}

	var input entities.UpdateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	apiKey, err := h.apiKeyUsecase.SetApiKeyActive(c.Request.Context(), userID, apiKeyID, *input.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, apiKey)
}

// DeleteApiKey revokes an API key
func (h *ApiKeyHandler) DeleteApiKey(c *gin.Context) {
	userID, apiKeyID, ok := h.keyParams(c)
	if !ok {
		return
	}

	if err := h.apiKeyUsecase.DeleteApiKey(c.Request.Context(), userID, apiKeyID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key deleted"})
}

func (h *ApiKeyHandler) keyParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	apiKeyID, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Invalid API key ID")
		return uuid.Nil, uuid.Nil, false
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, apiKeyID, true
}
