package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haven-community/haven/middleware"
	"github.com/haven-community/haven/moderation"
	"github.com/haven-community/haven/stores"
	"github.com/haven-community/haven/utils"
)

// PostController manages the moderated write path and the public feed.
type PostController struct {
	feed  *stores.FeedStore
	query *stores.FeedQuery
	gate  *moderation.Gate
}

// NewPostController creates a PostController.
func NewPostController(feed *stores.FeedStore, query *stores.FeedQuery, gate *moderation.Gate) *PostController {
	return &PostController{feed: feed, query: query, gate: gate}
}

// CreatePost screens the body and persists a post with the author snapshot.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Body string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	body := utils.Sanitize(strings.TrimSpace(req.Body))
	if body == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "post body is required")
		return
	}

	userID, userName, userRole, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	verdict := p.gate.Screen(ctx.Request.Context(), body)
	if verdict.Blocked {
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40022,
			"your post contains content that may be offensive, please revise and try again",
			gin.H{"flagged_categories": verdict.Flagged})
		return
	}
	body = moderation.Annotate(body, verdict)

	post, err := p.feed.CreatePost(ctx.Request.Context(), userID, userName, userRole, body)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "internal server error")
		return
	}
	utils.PostsCreated.Inc()

	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Respond(ctx, http.StatusCreated, 0, "post created successfully", gin.H{"post": post})
}

// ListPosts returns the public feed, newest-first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "10"))
	page, pageSize = stores.ClampPagination(page, pageSize)

	cacheKey := fmt.Sprintf("cache:posts:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	result, err := p.query.ListPosts(ctx.Request.Context(), page, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "internal server error")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: result}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, result)
}

// GetPost returns one post with comments and liker ids.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	cacheKey := "cache:post:detail:" + strconv.FormatUint(uint64(postID), 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, err := p.query.GetPost(ctx.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "internal server error")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"post": post}}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post; author or admin only.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	err := p.feed.DeletePost(ctx.Request.Context(), postID, userID, middleware.IsAdmin(ctx))
	switch {
	case errors.Is(err, stores.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	case errors.Is(err, stores.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only delete your own posts")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50023, "internal server error")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.FormatUint(uint64(postID), 10))

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// CreateComment screens and appends a comment. Same moderation contract as
// posts.
func (p *PostController) CreateComment(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	body := utils.Sanitize(strings.TrimSpace(req.Body))
	if body == "" {
		utils.Error(ctx, http.StatusBadRequest, 40024, "comment body is required")
		return
	}

	_, userName, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	verdict := p.gate.Screen(ctx.Request.Context(), body)
	if verdict.Blocked {
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40025,
			"your comment contains content that may be offensive, please revise and try again",
			gin.H{"flagged_categories": verdict.Flagged})
		return
	}
	body = moderation.Annotate(body, verdict)

	comment, err := p.feed.AppendComment(ctx.Request.Context(), postID, userName, body)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "internal server error")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.FormatUint(uint64(postID), 10))

	utils.Respond(ctx, http.StatusCreated, 0, "comment added successfully", gin.H{"comment": comment})
}

// Like toggles the caller's membership in the post's liker set. An
// explicit {"like": bool} intent is honored when present; both intent
// transitions are total.
func (p *PostController) Like(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}
	userID, _, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	var req struct {
		Like *bool `json:"like"`
	}
	// An empty body means a bare toggle.
	_ = ctx.ShouldBindJSON(&req)

	var likes int
	var err error
	if req.Like != nil {
		likes, err = p.feed.SetLike(ctx.Request.Context(), postID, userID, *req.Like)
	} else {
		likes, err = p.feed.ToggleLike(ctx.Request.Context(), postID, userID)
	}
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "internal server error")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.FormatUint(uint64(postID), 10))
	utils.InvalidateByPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"likes": likes})
}

func pathID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid post id")
		return 0, false
	}
	return uint(id), true
}
