// internal/repository/playstats_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/model"

	"gorm.io/gorm"
)

// playStatsRowID は累計行のID。1行しか存在しません
const playStatsRowID = 1

type PlayStatsRepository interface {
	// AddSeconds は累計再生秒数に加算します
	AddSeconds(ctx context.Context, tx *gorm.DB, seconds int64) error
	GetTotalSeconds(ctx context.Context, db *gorm.DB) (int64, error)
}

type gormPlayStatsRepository struct{}

func NewGormPlayStatsRepository() PlayStatsRepository {
	return &gormPlayStatsRepository{}
}

func (r *gormPlayStatsRepository) AddSeconds(ctx context.Context, tx *gorm.DB, seconds int64) error {
	if seconds <= 0 {
		return nil
	}
	var stats model.PlayStats
	err := tx.WithContext(ctx).Where("id = ?", playStatsRowID).First(&stats).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		stats = model.PlayStats{ID: playStatsRowID, TotalPlayedSeconds: seconds}
		return tx.WithContext(ctx).Create(&stats).Error
	}
	return tx.WithContext(ctx).Model(&model.PlayStats{}).
		Where("id = ?", playStatsRowID).
		Update("total_played_seconds", stats.TotalPlayedSeconds+seconds).Error
}

func (r *gormPlayStatsRepository) GetTotalSeconds(ctx context.Context, db *gorm.DB) (int64, error) {
	var stats model.PlayStats
	err := db.WithContext(ctx).Where("id = ?", playStatsRowID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return stats.TotalPlayedSeconds, nil
}
