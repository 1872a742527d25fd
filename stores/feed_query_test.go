package stores

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/haven-community/haven/models"
)

func seedPosts(t *testing.T, db *gorm.DB, n int) []models.Post {
	t.Helper()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = models.Post{
			AuthorID:   1,
			AuthorName: "alice",
			AuthorRole: models.RoleCasual,
			Body:       fmt.Sprintf("post %d", i+1),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&posts[i]).Error)
	}
	return posts
}

func TestListPostsPagination(t *testing.T) {
	db := setupDB(t)
	query := NewFeedQuery(db)
	seedPosts(t, db, 12)

	page, err := query.ListPosts(context.Background(), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.PageCount)
	require.Len(t, page.Items, 5)

	// Newest-first: page 2 of 5 over 12 posts holds posts 7..3 by
	// creation order.
	assert.Equal(t, "post 7", page.Items[0].Body)
	assert.Equal(t, "post 3", page.Items[4].Body)
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt))
	}
}

func TestListPostsClampsPagination(t *testing.T) {
	db := setupDB(t)
	query := NewFeedQuery(db)
	seedPosts(t, db, 3)

	page, err := query.ListPosts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Items, 3)

	// Oversized requests clamp to the cap rather than reset to the default.
	page, err = query.ListPosts(context.Background(), -5, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
}

func TestClampPagination(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 5, 2, 5},
		{1, 100, 1, 100},
		{1, 101, 1, 100},
	}
	for _, c := range cases {
		gotPage, gotSize := ClampPagination(c.page, c.size)
		assert.Equal(t, c.wantPage, gotPage)
		assert.Equal(t, c.wantSize, gotSize)
	}
}

func TestListPostsTieBreakByID(t *testing.T) {
	db := setupDB(t)
	query := NewFeedQuery(db)

	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Post{
			AuthorID: 1, AuthorName: "alice", AuthorRole: models.RoleCasual,
			Body: fmt.Sprintf("tied %d", i), CreatedAt: ts,
		}).Error)
	}

	page, err := query.ListPosts(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for i := 1; i < len(page.Items); i++ {
		assert.Greater(t, page.Items[i-1].ID, page.Items[i].ID)
	}
}

func TestGetPostCarriesCommentsAndLikers(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	query := NewFeedQuery(db)
	ctx := context.Background()

	post, err := feed.CreatePost(ctx, 1, "alice", models.RoleCasual, "hello")
	require.NoError(t, err)
	_, err = feed.AppendComment(ctx, post.ID, "bob", "nice")
	require.NoError(t, err)
	_, err = feed.ToggleLike(ctx, post.ID, 5)
	require.NoError(t, err)
	_, err = feed.ToggleLike(ctx, post.ID, 6)
	require.NoError(t, err)

	loaded, err := query.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.LikeCount)
	assert.ElementsMatch(t, []uint{5, 6}, loaded.LikedBy)
	require.Len(t, loaded.Comments, 1)
	assert.Equal(t, "nice", loaded.Comments[0].Body)

	_, err = query.GetPost(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// A post's displayed author identity reflects identity at creation time;
// renaming the user later must not rewrite history.
func TestAuthorSnapshotIsNotLive(t *testing.T) {
	db := setupDB(t)
	feed := NewFeedStore(db)
	query := NewFeedQuery(db)
	ctx := context.Background()

	user := models.User{Name: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCasual}
	require.NoError(t, db.Create(&user).Error)

	post, err := feed.CreatePost(ctx, user.ID, user.Name, user.Role, "hello")
	require.NoError(t, err)

	require.NoError(t, db.Model(&user).Update("name", "alicia").Error)

	loaded, err := query.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.AuthorName)
}
