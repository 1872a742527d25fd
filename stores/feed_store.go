package stores

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/haven-community/haven/models"
)

// FeedStore owns post aggregates and performs every mutation as a single
// store transaction. Handlers never read-then-write post state themselves;
// the transaction plus the (post_id, user_id) primary key on post_likes is
// what keeps like counts consistent under concurrent requests.
type FeedStore struct {
	db *gorm.DB
}

// NewFeedStore creates a FeedStore.
func NewFeedStore(db *gorm.DB) *FeedStore {
	return &FeedStore{db: db}
}

// CreatePost persists a new post with the author's name and role
// snapshotted at creation time.
func (s *FeedStore) CreatePost(ctx context.Context, authorID uint, authorName, authorRole, body string) (*models.Post, error) {
	post := models.Post{
		AuthorID:   authorID,
		AuthorName: authorName,
		AuthorRole: authorRole,
		Body:       body,
		LikeCount:  0,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	post.Comments = []models.Comment{}
	post.LikedBy = []uint{}
	return &post, nil
}

// AppendComment atomically appends a comment to the post's comment list.
// Returns ErrNotFound when the post does not exist.
func (s *FeedStore) AppendComment(ctx context.Context, postID uint, authorName, body string) (*models.Comment, error) {
	comment := models.Comment{
		PostID:     postID,
		AuthorName: authorName,
		Body:       body,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike flips the user's membership in the post's liker set and
// returns the resulting like count. Membership row and counter move
// together inside one transaction, so concurrent toggles by different
// users cannot lose updates; concurrent toggles by the same user resolve
// to last-write-wins, which is fine since the operation is idempotent per
// user intent.
func (s *FeedStore) ToggleLike(ctx context.Context, postID, userID uint) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		delta := -1
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			delta = 1
		}
		return bumpLikeCount(tx, postID, delta, &count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetLike applies an explicit like/unlike intent. Both transitions are
// total: liking an already-liked post (or unliking a never-liked one) is a
// no-op that returns the current count unchanged.
func (s *FeedStore) SetLike(ctx context.Context, postID, userID uint, liked bool) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePost(tx, postID); err != nil {
			return err
		}
		delta := 0
		if liked {
			err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error
			switch {
			case err == nil:
				delta = 1
			case errors.Is(err, gorm.ErrDuplicatedKey):
				// already a member
			default:
				return err
			}
		} else {
			res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				delta = -1
			}
		}
		return bumpLikeCount(tx, postID, delta, &count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeletePost removes a post with its comments and likes. Only the original
// author or an admin may delete.
func (s *FeedStore) DeletePost(ctx context.Context, postID, requesterID uint, admin bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if post.AuthorID != requesterID && !admin {
			return ErrForbidden
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}

func ensurePost(tx *gorm.DB, postID uint) error {
	var post models.Post
	if err := tx.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// bumpLikeCount applies a relative counter update and reads the resulting
// value inside the same transaction.
func bumpLikeCount(tx *gorm.DB, postID uint, delta int, out *int) error {
	if delta != 0 {
		err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
		if err != nil {
			return err
		}
	}
	var post models.Post
	if err := tx.Select("like_count").First(&post, postID).Error; err != nil {
		return err
	}
	*out = post.LikeCount
	return nil
}
