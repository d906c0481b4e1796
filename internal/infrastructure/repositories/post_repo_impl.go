package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/infrastructure/models"
)

// PostRepository implements read access to published posts
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// ListPublished returns one page of published posts, newest first, with the total match count
func (r *PostRepository) ListPublished(ctx context.Context, filter entities.PostFilter) ([]*entities.Post, int64, error) {
	var total int64
	if err := r.published(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Post
	if err := r.published(ctx, filter).
		Preload("Author").
		Order("posts.created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]*entities.Post, 0, len(ms))
	for _, m := range ms {
		model := m
		posts = append(posts, r.toEntity(&model))
	}
	return posts, total, nil
}

// FindPublishedBySlug gets a single published post of an author
func (r *PostRepository) FindPublishedBySlug(ctx context.Context, username, slug string) (*entities.Post, error) {
	var m models.Post
	if err := r.published(ctx, entities.PostFilter{AuthorUsername: username}).
		Preload("Author").
		Where("posts.slug = ?", slug).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListPublishedTags returns the tag array of every published post
func (r *PostRepository) ListPublishedTags(ctx context.Context) ([][]string, error) {
	var rows []pq.StringArray
	if err := GetDB(ctx, r.db).Model(&models.Post{}).
		Where("status = ?", entities.PostStatusPublished).
		Pluck("tags", &rows).Error; err != nil {
		return nil, err
	}

	tags := make([][]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, []string(row))
	}
	return tags, nil
}

func (r *PostRepository) published(ctx context.Context, filter entities.PostFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.Post{}).
		Where("posts.status = ?", entities.PostStatusPublished)

	if filter.AuthorUsername != "" {
		query = query.
			Joins("JOIN profiles ON profiles.id = posts.user_id").
			Where("profiles.username = ?", filter.AuthorUsername)
	}
	if len(filter.Tags) > 0 {
		query = query.Where(r.tagsOverlap(filter.Tags))
	}
	return query
}

// tagsOverlap matches posts sharing at least one tag with the list. Postgres
// uses the native array operator; other dialects see the array literal as text.
func (r *PostRepository) tagsOverlap(tags []string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return r.db.Where("posts.tags && ?", pq.StringArray(tags))
	}

	cond := r.db.Where("posts.tags LIKE ?", likeArrayElement(tags[0]))
	for _, tag := range tags[1:] {
		cond = cond.Or("posts.tags LIKE ?", likeArrayElement(tag))
	}
	return cond
}

func likeArrayElement(tag string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(tag)
	return `%"` + escaped + `"%`
}

func (r *PostRepository) toEntity(m *models.Post) *entities.Post {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}

	post := &entities.Post{
		ID:              m.ID,
		Title:           m.Title,
		Slug:            m.Slug,
		Excerpt:         null.StringFromPtr(m.Excerpt),
		MarkdownContent: m.MarkdownContent,
		HTMLContent:     null.StringFromPtr(m.HTMLContent),
		CoverImage:      null.StringFromPtr(m.CoverImage),
		Tags:            tags,
		ViewCount:       m.ViewCount,
		LikeCount:       m.LikeCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Author.Username != "" {
		post.Author = &entities.PostAuthor{
			Username:    m.Author.Username,
			DisplayName: null.StringFromPtr(m.Author.DisplayName),
			AvatarURL:   null.StringFromPtr(m.Author.AvatarURL),
			Bio:         null.StringFromPtr(m.Author.Bio),
		}
	}
	return post
}
