package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"write-space.backend/internal/interfaces/http/response"
	"write-space.backend/internal/usecases"
	"write-space.backend/pkg/utils"
)

type PostHandler struct {
	contentUsecase *usecases.ContentUsecase
}

func NewPostHandler(contentUsecase *usecases.ContentUsecase) *PostHandler {
	return &PostHandler{contentUsecase: contentUsecase}
}

// ListPosts handles GET /api/posts?limit=&offset=&tags=&author=
func (h *PostHandler) ListPosts(c *gin.Context) {
	h.list(c, c.Query("author"))
}

// ListPostsByAuthor handles GET /api/posts/:username
func (h *PostHandler) ListPostsByAuthor(c *gin.Context) {
	h.list(c, c.Param("username"))
}

func (h *PostHandler) list(c *gin.Context, author string) {
	page := utils.ParsePagination(c.Query("limit"), c.Query("offset"))
	tags := parseTags(c.Query("tags"))

	posts, meta, err := h.contentUsecase.ListPosts(c.Request.Context(), tags, author, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, posts, meta)
}

// GetPost handles GET /api/posts/:username/:slug
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.contentUsecase.GetPost(c.Request.Context(), c.Param("username"), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, post)
}

// parseTags splits a comma separated list, dropping blanks
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
