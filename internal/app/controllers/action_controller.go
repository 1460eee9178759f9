package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/models/dto"
	"github.com/yeegr/singular/internal/app/services"
	"github.com/yeegr/singular/internal/middleware"
	"github.com/yeegr/singular/internal/pkg/apperrors"
	"github.com/yeegr/singular/internal/pkg/helpers"
)

// ActionController handles interaction actions against targets
type ActionController struct {
	ledgerService *services.LedgerService
}

// NewActionController creates a new ActionController
func NewActionController(ledgerService *services.LedgerService) *ActionController {
	return &ActionController{ledgerService: ledgerService}
}

// RecordAction handles recording an action on a target
func (c *ActionController) RecordAction(ctx *gin.Context) {
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

	kind := models.ActionKind(ctx.Param("action"))
	action, err := c.ledgerService.Record(ctx.Request.Context(), kind, actor, target, ctx.Request.UserAgent())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(action, "Action recorded"))
}

// RetractAction handles removing a reversible action from a target
func (c *ActionController) RetractAction(ctx *gin.Context) {
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

	kind := models.ActionKind(ctx.Param("action"))
	if err := c.ledgerService.Retract(ctx.Request.Context(), kind, actor, target, ctx.Request.UserAgent()); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Action retracted"))
}

// GetActionStatus reports whether the caller holds a live action on a target
func (c *ActionController) GetActionStatus(ctx *gin.Context) {
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

	kind := models.ActionKind(ctx.Param("action"))
	active, err := c.ledgerService.HasActed(ctx.Request.Context(), kind, actor, target)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ActionStatusResponse{
		Action: string(kind),
		Active: active,
	}, ""))
}

// ListActions retrieves ledger entries of one kind against a target
func (c *ActionController) ListActions(ctx *gin.Context) {
	target, err := parseTargetRef(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	kind := models.ActionKind(ctx.Param("action"))
	page, size := helpers.ParsePaginationParams(ctx)

	actions, err := c.ledgerService.ListByTarget(ctx.Request.Context(), kind, target, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(helpers.NewPagedResponse(actions, 0, page, size), ""))
}
