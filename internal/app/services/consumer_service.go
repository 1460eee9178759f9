package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yeegr/singular/internal/app/models"
	"github.com/yeegr/singular/internal/app/repositories"
)

// ConsumerService provides read access to consumer profiles
type ConsumerService struct {
	consumers *repositories.ConsumerRepository
	logger    zerolog.Logger
}

// NewConsumerService creates a new ConsumerService
func NewConsumerService(consumers *repositories.ConsumerRepository, logger zerolog.Logger) *ConsumerService {
	return &ConsumerService{
		consumers: consumers,
		logger:    logger,
	}
}

// GetByID retrieves a consumer profile
func (s *ConsumerService) GetByID(ctx context.Context, id int64) (*models.Consumer, error) {
	return s.consumers.FindByID(ctx, id)
}
