// internal/repository/checkpoint_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckpointRepository interface {
	// Upsert はチェックポイントを保存し、上限を超えた分を
	// 最終書き込みの古い順に追い出します
	Upsert(ctx context.Context, tx *gorm.DB, checkpoint *model.PlaybackCheckpoint, historyLimit int) error
	FindByVideoID(ctx context.Context, db *gorm.DB, videoID uuid.UUID) (*model.PlaybackCheckpoint, error)
	Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
	// List は最終書き込みの新しい順に返します
	List(ctx context.Context, db *gorm.DB) ([]*model.PlaybackCheckpoint, error)
}

type gormCheckpointRepository struct{}

func NewGormCheckpointRepository() CheckpointRepository {
	return &gormCheckpointRepository{}
}

func (r *gormCheckpointRepository) Upsert(ctx context.Context, tx *gorm.DB, checkpoint *model.PlaybackCheckpoint, historyLimit int) error {
	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "last_played_seconds", "last_played_at"}),
	}).Create(checkpoint)
	if result.Error != nil {
		return result.Error
	}

	if historyLimit <= 0 {
		return nil
	}

	// 上限超過分を追い出す (最終書き込みの古いものから)
	var count int64
	if err := tx.WithContext(ctx).Model(&model.PlaybackCheckpoint{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - historyLimit
	if excess <= 0 {
		return nil
	}

	var oldest []*model.PlaybackCheckpoint
	if err := tx.WithContext(ctx).Order("last_played_at ASC").Limit(excess).Find(&oldest).Error; err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(oldest))
	for _, cp := range oldest {
		ids = append(ids, cp.VideoID)
	}
	return tx.WithContext(ctx).Where("video_id IN ?", ids).Delete(&model.PlaybackCheckpoint{}).Error
}

func (r *gormCheckpointRepository) FindByVideoID(ctx context.Context, db *gorm.DB, videoID uuid.UUID) (*model.PlaybackCheckpoint, error) {
	var checkpoint model.PlaybackCheckpoint
	result := db.WithContext(ctx).Where("video_id = ?", videoID).First(&checkpoint)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &checkpoint, nil
}

func (r *gormCheckpointRepository) Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	// チェックポイントが無い動画のクリアは正常扱い (冪等)
	return tx.WithContext(ctx).Where("video_id = ?", videoID).Delete(&model.PlaybackCheckpoint{}).Error
}

func (r *gormCheckpointRepository) List(ctx context.Context, db *gorm.DB) ([]*model.PlaybackCheckpoint, error) {
	var checkpoints []*model.PlaybackCheckpoint
	result := db.WithContext(ctx).Order("last_played_at DESC").Find(&checkpoints)
	if result.Error != nil {
		return nil, result.Error
	}
	return checkpoints, nil
}
