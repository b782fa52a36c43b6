package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/navid-fn/bestex/server/internal/model"
)

type TickRepository interface {
	GetLatestTicks(ctx context.Context, symbol string, limit int) ([]model.Tick, error)
	GetTickCountGroupBySource(ctx context.Context) (map[string]int64, error)
}

type gormTickRepository struct {
	db *gorm.DB
}

func NewGormTickRepository(db *gorm.DB) TickRepository {
	return &gormTickRepository{db: db}
}

func (r *gormTickRepository) GetLatestTicks(ctx context.Context, symbol string, limit int) ([]model.Tick, error) {
	var ticks []model.Tick
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("event_time desc").
		Limit(limit).
		Find(&ticks).Error
	if err != nil {
		return nil, err
	}
	return ticks, nil
}

func (r *gormTickRepository) GetTickCountGroupBySource(ctx context.Context) (map[string]int64, error) {
	type sourceCount struct {
		Source string
		Count  int64
	}
	var rows []sourceCount
	err := r.db.WithContext(ctx).Model(&model.Tick{}).
		Select("source, count(*) as count").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Source] = row.Count
	}
	return result, nil
}
