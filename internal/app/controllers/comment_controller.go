package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models/dto"
	"github.com/yeegr/singular/internal/app/services"
	"github.com/yeegr/singular/internal/middleware"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/helpers"
)

// CommentController handles comment operations
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// CreateComment handles adding a comment to a target
func (c *CommentController) CreateComment(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	target, err := parseTargetRef(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithDetails(err.Error())))
		return
	}

	comment, err := c.commentService.Create(ctx.Request.Context(), actor, target, req.ParentID, req.Content, req.Rating)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(comment, "Comment created"))
}

// UpdateComment handles editing a comment
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithDetails(err.Error())))
		return
	}

	comment, err := c.commentService.Update(ctx.Request.Context(), id, actor, req.Content, req.Rating)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(comment, "Comment updated"))
}

// DeleteComment handles removing a comment
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.commentService.Remove(ctx.Request.Context(), id, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Comment removed"))
}

// ListComments retrieves a target's comments
func (c *CommentController) ListComments(ctx *gin.Context) {
	target, err := parseTargetRef(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	comments, err := c.commentService.ListByTarget(ctx.Request.Context(), target, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(helpers.NewPagedResponse(comments, 0, page, size), ""))
}
