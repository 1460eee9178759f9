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

// ContentController handles post and event operations
type ContentController struct {
	contentService *services.ContentService
}

// NewContentController creates a new ContentController
func NewContentController(contentService *services.ContentService) *ContentController {
	return &ContentController{contentService: contentService}
}

// CreateContent handles drafting a new post or event
func (c *ContentController) CreateContent(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithDetails(err.Error())))
		return
	}

	content, err := c.contentService.Create(ctx.Request.Context(), kind, actor, req.Title, req.Slug, req.Excerpt, req.Body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(content, "Draft created"))
}

// GetContent retrieves a published entity by slug, counting the view
func (c *ContentController) GetContent(ctx *gin.Context) {
	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	content, err := c.contentService.Get(ctx.Request.Context(), kind, ctx.Param("slug"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(content, ""))
}

// GetOwnContent retrieves the caller's own entity regardless of status
func (c *ContentController) GetOwnContent(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	content, err := c.contentService.GetOwned(ctx.Request.Context(), kind, ctx.Param("slug"), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(content, ""))
}

// ListContent retrieves published entities
func (c *ContentController) ListContent(ctx *gin.Context) {
	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	items, total, err := c.contentService.List(ctx.Request.Context(), kind, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(helpers.NewPagedResponse(items, total, page, size), ""))
}

// SubmitContent moves a draft into the approval queue
func (c *ContentController) SubmitContent(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	process, err := c.contentService.Submit(ctx.Request.Context(), kind, ctx.Param("slug"), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(process, "Submitted for approval"))
}

// DeleteContent removes the caller's own entity
func (c *ContentController) DeleteContent(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	kind, err := contentKind(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.contentService.Delete(ctx.Request.Context(), kind, ctx.Param("slug"), actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Deleted"))
}
