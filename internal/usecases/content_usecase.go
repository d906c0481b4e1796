package usecases

import (
	"context"
	"errors"
	"sort"

	"write-space.backend/internal/domain/entities"
	domainerrors "write-space.backend/internal/domain/errors"
	"write-space.backend/internal/domain/repositories"
	"write-space.backend/pkg/utils"
)

// TagCache stores computed tag counts between requests
type TagCache interface {
	Get(ctx context.Context) ([]entities.TagCount, bool)
	Set(ctx context.Context, tags []entities.TagCount)
}

// ContentUsecase serves the read-only post, tag and user queries
type ContentUsecase struct {
	postRepo    repositories.PostRepository
	profileRepo repositories.ProfileRepository
	tagCache    TagCache
}

func NewContentUsecase(
	postRepo repositories.PostRepository,
	profileRepo repositories.ProfileRepository,
	tagCache TagCache,
) *ContentUsecase {
	return &ContentUsecase{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		tagCache:    tagCache,
	}
}

// ListPosts returns one page of published posts, newest first
func (u *ContentUsecase) ListPosts(ctx context.Context, tags []string, author string, page utils.PaginationParams) ([]*entities.Post, utils.PaginationMeta, error) {
	posts, total, err := u.postRepo.ListPublished(ctx, entities.PostFilter{
		Tags:           tags,
		AuthorUsername: author,
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return posts, utils.CalculateMeta(total, page), nil
}

// GetPost returns a single published post of an author
func (u *ContentUsecase) GetPost(ctx context.Context, username, slug string) (*entities.Post, error) {
	post, err := u.postRepo.FindPublishedBySlug(ctx, username, slug)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgPostNotFound)
		}
		return nil, err
	}
	return post, nil
}

// ListTags counts tags across published posts, most used first.
// popular keeps only the top PopularTagLimit entries.
func (u *ContentUsecase) ListTags(ctx context.Context, popular bool) ([]entities.TagCount, error) {
	tags, ok := u.cachedTags(ctx)
	if !ok {
		rows, err := u.postRepo.ListPublishedTags(ctx)
		if err != nil {
			return nil, err
		}
		tags = CountTags(rows)
		if u.tagCache != nil {
			u.tagCache.Set(ctx, tags)
		}
	}

	if popular && len(tags) > PopularTagLimit {
		tags = tags[:PopularTagLimit]
	}
	return tags, nil
}

func (u *ContentUsecase) cachedTags(ctx context.Context) ([]entities.TagCount, bool) {
	if u.tagCache == nil {
		return nil, false
	}
	return u.tagCache.Get(ctx)
}

// GetUser returns a public profile with stats over the author's published posts
func (u *ContentUsecase) GetUser(ctx context.Context, username string) (*entities.UserSummary, error) {
	profile, err := u.profileRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	stats, err := u.profileRepo.PublishedStats(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return &entities.UserSummary{Profile: *profile, PostStats: *stats}, nil
}

// CountTags tallies every tag occurrence and sorts by count desc, then name asc
func CountTags(rows [][]string) []entities.TagCount {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, tag := range row {
			counts[tag]++
		}
	}

	tags := make([]entities.TagCount, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, entities.TagCount{Name: name, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}
