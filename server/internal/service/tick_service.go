package service

import (
	"context"

	"github.com/navid-fn/bestex/internal/models"
	"github.com/navid-fn/bestex/server/internal/model"
	"github.com/navid-fn/bestex/server/internal/repository"
)

const (
	defaultTickLimit = 100
	maxTickLimit     = 1000
)

type TicksService struct {
	repo repository.TickRepository
}

func NewTicksService(repo repository.TickRepository) *TicksService {
	return &TicksService{
		repo: repo,
	}
}

// GetTicks returns the newest ticks of pair. limit is clamped to 1..1000.
func (ts *TicksService) GetTicks(ctx context.Context, pair string, limit int) ([]model.Tick, error) {
	if limit <= 0 {
		limit = defaultTickLimit
	}
	if limit > maxTickLimit {
		limit = maxTickLimit
	}
	return ts.repo.GetLatestTicks(ctx, models.NormalizePair(pair), limit)
}

func (ts *TicksService) GetCountPerSource(ctx context.Context) (map[string]int64, error) {
	return ts.repo.GetTickCountGroupBySource(ctx)
}
