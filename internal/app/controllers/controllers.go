package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/pkg/apperrors"
)

// parseTargetRef resolves the :kind/:id path segments into a target reference
func parseTargetRef(c *gin.Context) (models.TargetRef, error) {
	kind := models.TargetKind(c.Param("kind"))
	if !kind.Valid() {
		return models.TargetRef{}, apperrors.ErrUnknownTargetKind
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return models.TargetRef{}, apperrors.ErrInvalidFormat
	}
	return models.TargetRef{ID: id, Kind: kind}, nil
}

// parseID resolves a numeric path parameter
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidFormat
	}
	return id, nil
}

// contentKind resolves the :kind path segment for content routes
func contentKind(c *gin.Context) (models.TargetKind, error) {
	kind := models.TargetKind(c.Param("kind"))
	if kind != models.TargetPost && kind != models.TargetEvent {
		return "", apperrors.ErrUnknownTargetKind
	}
	return kind, nil
}
