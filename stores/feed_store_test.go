package stores

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haven-community/haven/models"
)

func setupDB(t testing.TB) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps sqlite's single-writer model out of the way;
	// callers still interleave freely above the pool.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.ProfessionalProfile{},
		&models.Post{}, &models.Comment{}, &models.PostLike{},
		&models.Professional{},
	))
	return db
}

func TestCreatePostInitialState(t *testing.T) {
	feed := NewFeedStore(setupDB(t))
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, "alice", post.AuthorName)
	assert.Equal(t, models.RoleCasual, post.AuthorRole)
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, post.Comments)
	assert.Empty(t, post.LikedBy)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	likes, err := feed.ToggleLike(ctx, post.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = feed.ToggleLike(ctx, post.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)

	var members int64
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&members).Error)
	assert.Zero(t, members, "round trip must restore the liker set")
}

func TestToggleLikeDistinctUsers(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	_, err = feed.ToggleLike(ctx, post.ID, 10)
	require.NoError(t, err)
	likes, err := feed.ToggleLike(ctx, post.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)
}

func TestConcurrentTogglesNoLostUpdate(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	const likers = 16
	var wg sync.WaitGroup
	errs := make(chan error, likers)
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			if _, err := feed.ToggleLike(ctx, post.ID, userID); err != nil {
				errs <- err
			}
		}(uint(100 + i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle failed: %v", err)
	}

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	var members int64
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&members).Error)

	assert.Equal(t, likers, reloaded.LikeCount)
	assert.Equal(t, int64(likers), members, "like count must equal the number of distinct likers")
}

func TestSetLikeIsTotal(t *testing.T) {
	feed := NewFeedStore(setupDB(t))
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	// Liking twice is a no-op the second time.
	likes, err := feed.SetLike(ctx, post.ID, 7, true)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, err = feed.SetLike(ctx, post.ID, 7, true)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	// Unliking twice, likewise.
	likes, err = feed.SetLike(ctx, post.ID, 7, false)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
	likes, err = feed.SetLike(ctx, post.ID, 7, false)
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
}

func TestToggleLikeMissingPost(t *testing.T) {
	feed := NewFeedStore(setupDB(t))
	_, err := feed.ToggleLike(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendComment(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)

	comment, err := feed.AppendComment(ctx, post.ID, "bob", "nice")
	require.NoError(t, err)
	assert.NotZero(t, comment.ID)
	assert.Equal(t, "bob", comment.AuthorName)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = feed.AppendComment(ctx, 999, "bob", "nice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)
	_, err = feed.AppendComment(ctx, post.ID, "bob", "nice")
	require.NoError(t, err)
	_, err = feed.ToggleLike(ctx, post.ID, 2)
	require.NoError(t, err)

	// Not the author, not an admin.
	err = feed.DeletePost(ctx, post.ID, 2, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin may delete a post they do not own.
	require.NoError(t, feed.DeletePost(ctx, post.ID, 99, true))

	var comments, likes int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)

	err = feed.DeletePost(ctx, post.ID, 1, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePostByAuthor(t *testing.T) {
	feed := NewFeedStore(setupDB(t))
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)
	require.NoError(t, feed.DeletePost(ctx, post.ID, 1, false))
}
