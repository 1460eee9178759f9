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

// GroupController handles group operations
type GroupController struct {
	groupService *services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail.WithDetails(err.Error())))
		return false
	}
	return true
}

// CreateGroup handles creating a group
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.CreateGroup(ctx.Request.Context(), actor, req.Title, req.Slug,
		models.MembershipSetting(req.Membership), req.Alias)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(group, "Group created"))
}

// GetGroup retrieves a group with its members
func (c *GroupController) GetGroup(ctx *gin.Context) {
	group, err := c.groupService.GetGroup(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(group, ""))
}

// UpdateGroup handles editing a group
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.UpdateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.UpdateGroup(ctx.Request.Context(), ctx.Param("slug"), actor,
		req.Title, models.MembershipSetting(req.Membership))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(group, "Group updated"))
}

// DeleteGroup handles removing a group
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	if err := c.groupService.DeleteGroup(ctx.Request.Context(), ctx.Param("slug"), actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Group deleted"))
}

// JoinGroup handles the caller joining an open group
func (c *GroupController) JoinGroup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.JoinGroupRequest
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, &req) {
		return
	}

	member, err := c.groupService.Join(ctx.Request.Context(), ctx.Param("slug"), actor, req.Alias)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(member, "Joined group"))
}

// AddMember handles a manager adding a user to a group
func (c *GroupController) AddMember(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.AddMemberRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user := models.ActorRef{ID: req.UserID, Kind: models.ActorKind(req.UserKind)}
	member, err := c.groupService.AddMember(ctx.Request.Context(), ctx.Param("slug"), actor, user, req.Alias)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(member, "Member added"))
}

// LeaveGroup handles the caller leaving a group
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	if err := c.groupService.Leave(ctx.Request.Context(), ctx.Param("slug"), actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Left group"))
}

// KickMember handles a manager removing another member
func (c *GroupController) KickMember(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	userID, err := parseID(ctx, "userId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	userKind := models.ActorKind(ctx.Param("userKind"))
	if !userKind.Valid() {
		middleware.HandleAPIError(ctx, apperrors.ErrUnknownActorKind)
		return
	}

	user := models.ActorRef{ID: userID, Kind: userKind}
	if err := c.groupService.KickMember(ctx.Request.Context(), ctx.Param("slug"), actor, user); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Member removed"))
}

// TransferManager handles handing the manager role to another member
func (c *GroupController) TransferManager(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.TransferManagerRequest
	if !bindJSON(ctx, &req) {
		return
	}

	to := models.ActorRef{ID: req.UserID, Kind: models.ActorKind(req.UserKind)}
	if err := c.groupService.TransferManager(ctx.Request.Context(), ctx.Param("slug"), actor, to); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nil, "Manager role transferred"))
}
