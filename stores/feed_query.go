package stores

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/haven-community/haven/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostPage is one page of the feed.
type PostPage struct {
	Items     []models.Post `json:"items"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	Total     int64         `json:"total"`
	PageCount int           `json:"page_count"`
}

// FeedQuery serves read traffic. Posts already carry the denormalized
// author snapshot, so listing never touches the users table.
type FeedQuery struct {
	db *gorm.DB
}

// NewFeedQuery creates a FeedQuery.
func NewFeedQuery(db *gorm.DB) *FeedQuery {
	return &FeedQuery{db: db}
}

// ListPosts returns posts newest-first (ties broken by id descending) with
// offset pagination. Page and pageSize are clamped to sane positives.
func (q *FeedQuery) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	page, pageSize = ClampPagination(page, pageSize)

	var total int64
	if err := q.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	err := q.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.created_at ASC") }).
		Preload("Likes").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for i := range posts {
		hydrate(&posts[i])
	}

	return &PostPage{
		Items:     posts,
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		PageCount: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetPost returns a single post with comments and liker ids.
func (q *FeedQuery) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := q.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.created_at ASC") }).
		Preload("Likes").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	hydrate(&post)
	return &post, nil
}

func hydrate(post *models.Post) {
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	post.LikedBy = lo.Map(post.Likes, func(l models.PostLike, _ int) uint { return l.UserID })
}

// ClampPagination normalizes paging parameters: non-positive values fall
// back to page 1 and the default size, oversized requests clamp to the cap.
// Callers that key caches on paging parameters use this so aliases of the
// same page share one entry.
func ClampPagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
