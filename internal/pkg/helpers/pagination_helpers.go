package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// ParsePaginationParams extracts and validates pagination parameters from the
// request. Pages are 1-based.
func ParsePaginationParams(c *gin.Context) (page, size int) {
	pageStr := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	sizeStr := c.DefaultQuery("size", "10")
	size, err = strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	return page, size
}

// NewPagedResponse wraps a page of items in the standard envelope
func NewPagedResponse(items interface{}, total int64, page, size int) dto.PagedResponse {
	return dto.PagedResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
	}
}
