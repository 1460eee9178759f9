package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/models/dto"
	"github.com/yeegr/singular/internal/app/services"
	"github.com/yeegr/singular/internal/middleware"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// ProcessController handles workflow process operations
type ProcessController struct {
	workflowService *services.WorkflowService
}

// NewProcessController creates a new ProcessController
func NewProcessController(workflowService *services.WorkflowService) *ProcessController {
	return &ProcessController{workflowService: workflowService}
}

// GetProcess retrieves a process with its activity chain
func (c *ProcessController) GetProcess(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	process, err := c.workflowService.GetProcess(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(process, ""))
}

// AddActivity appends an activity to a pending process
func (c *ProcessController) AddActivity(ctx *gin.Context) {
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

	var req dto.AddActivityRequest
	if !bindJSON(ctx, &req) {
		return
	}

	activity, err := c.workflowService.AddActivity(ctx.Request.Context(), id, actor, req.Action)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(activity, "Activity added"))
}

// ClaimActivity marks an activity as being processed by the caller
func (c *ProcessController) ClaimActivity(ctx *gin.Context) {
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

	activity, err := c.workflowService.ClaimActivity(ctx.Request.Context(), id, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(activity, "Activity claimed"))
}

// CompleteActivity records the caller's verdict on an activity
func (c *ProcessController) CompleteActivity(ctx *gin.Context) {
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

	var req dto.CompleteActivityRequest
	if !bindJSON(ctx, &req) {
		return
	}

	activity, err := c.workflowService.CompleteActivity(ctx.Request.Context(), id, actor,
		models.ContentStatus(req.Verdict), req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(activity, "Activity completed"))
}

// FinalizeProcess closes a process and pushes the decided status to its target
func (c *ProcessController) FinalizeProcess(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.FinalizeProcessRequest
	if !bindJSON(ctx, &req) {
		return
	}

	process, err := c.workflowService.FinalizeProcess(ctx.Request.Context(), id, models.ContentStatus(req.Decision))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(process, "Process finalized"))
}

// CancelProcess abandons a pending process
func (c *ProcessController) CancelProcess(ctx *gin.Context) {
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

	process, err := c.workflowService.CancelProcess(ctx.Request.Context(), id, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(process, "Process cancelled"))
}
