package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models/dto"
	"github.com/elihudev/elihudroom/internal/app/services"
	"github.com/elihudev/elihudroom/internal/middleware"
	"github.com/elihudev/elihudroom/internal/pkg/apperrors"
)

// PostController handles announcement posts
type PostController struct {
	postService services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      logger,
	}
}

// CreatePost publishes an announcement in a class
// @Summary Create a post
// @Description Creates an announcement with up to five inline attachments. Owner only. One invalid attachment rejects the whole request.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.CreatePostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Post created"
// @Failure 400 {object} dto.ErrorResponse "Empty title or invalid attachment"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	classID, err := classIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), middleware.CurrentUser(ctx), classID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: post})
}

// ListPosts returns the class feed
// @Summary List posts
// @Description Returns the full feed for a class, newest first. Members only.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Feed snapshot"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	classID, err := classIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	posts, err := c.postService.ListPosts(ctx.Request.Context(), middleware.CurrentUser(ctx), classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: posts})
}

// UpdatePost edits an announcement
// @Summary Update a post
// @Description Replaces titulo, contenido and the full attachment list. Author only.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Param request body dto.UpdatePostRequest true "New post content"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Updated post"
// @Failure 400 {object} dto.ErrorResponse "Empty title or invalid attachment"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{postId} [put]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	postID, err := postIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	post, err := c.postService.UpdatePost(ctx.Request.Context(), middleware.CurrentUser(ctx), postID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: post})
}

// DeletePost removes an announcement
// @Summary Delete a post
// @Description Deletes an announcement from the class feed. Author only.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the author"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{postId} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	postID, err := postIDParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.postService.DeletePost(ctx.Request.Context(), middleware.CurrentUser(ctx), postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.SuccessResponse{Message: "Post deleted"}})
}

func postIDParam(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("postId"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid post id")
	}
	return id, nil
}
