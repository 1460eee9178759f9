package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/models/dto"
	"github.com/yeegr/singular/internal/app/services"
	"github.com/yeegr/singular/internal/middleware"
)

// ConsumerController handles consumer profile reads
type ConsumerController struct {
	consumerService *services.ConsumerService
}

// NewConsumerController creates a new ConsumerController
func NewConsumerController(consumerService *services.ConsumerService) *ConsumerController {
	return &ConsumerController{consumerService: consumerService}
}

// GetConsumer retrieves a consumer profile
func (c *ConsumerController) GetConsumer(ctx *gin.Context) {
	id, err := parseID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	consumer, err := c.consumerService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(consumer, ""))
}
