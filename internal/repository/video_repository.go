// internal/repository/video_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, video *model.Video) error
	FindByID(ctx context.Context, db *gorm.DB, videoID uuid.UUID) (*model.Video, error)
	// FindAll は全動画をカタログ挿入順で返します。不正なレコードはスキップされます
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.Video, error)
	FindByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) ([]*model.Video, error)
	// FindNewByCollection はstatus=newの動画をカタログ挿入順で返します
	FindNewByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) ([]*model.Video, error)
	// FindByCollections は指定コレクション群の全動画を挿入順で返します
	FindByCollections(ctx context.Context, db *gorm.DB, collectionIDs []uuid.UUID) ([]*model.Video, error)
	Update(ctx context.Context, tx *gorm.DB, video *model.Video) error
	UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
	CountByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) (int64, error)
}

type gormVideoRepository struct{}

func NewGormVideoRepository() VideoRepository {
	return &gormVideoRepository{}
}

func (r *gormVideoRepository) Create(ctx context.Context, tx *gorm.DB, video *model.Video) error {
	return tx.WithContext(ctx).Create(video).Error
}

func (r *gormVideoRepository) FindByID(ctx context.Context, db *gorm.DB, videoID uuid.UUID) (*model.Video, error) {
	var video model.Video
	result := db.WithContext(ctx).Where("video_id = ?", videoID).First(&video)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &video, nil
}

func (r *gormVideoRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.Video, error) {
	var videos []*model.Video
	result := db.WithContext(ctx).Order("created_at ASC, episode_number ASC").Find(&videos)
	if result.Error != nil {
		return nil, result.Error
	}
	return filterValid(ctx, videos), nil
}

func (r *gormVideoRepository) FindByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) ([]*model.Video, error) {
	var videos []*model.Video
	result := db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("created_at ASC, episode_number ASC").
		Find(&videos)
	if result.Error != nil {
		return nil, result.Error
	}
	return filterValid(ctx, videos), nil
}

func (r *gormVideoRepository) FindNewByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) ([]*model.Video, error) {
	var videos []*model.Video
	result := db.WithContext(ctx).
		Where("collection_id = ? AND status = ?", collectionID, model.StatusNew).
		Order("created_at ASC, episode_number ASC").
		Find(&videos)
	if result.Error != nil {
		return nil, result.Error
	}
	return videos, nil
}

func (r *gormVideoRepository) FindByCollections(ctx context.Context, db *gorm.DB, collectionIDs []uuid.UUID) ([]*model.Video, error) {
	if len(collectionIDs) == 0 {
		return []*model.Video{}, nil
	}
	var videos []*model.Video
	result := db.WithContext(ctx).
		Where("collection_id IN ?", collectionIDs).
		Order("created_at ASC, episode_number ASC").
		Find(&videos)
	if result.Error != nil {
		return nil, result.Error
	}
	return filterValid(ctx, videos), nil
}

func (r *gormVideoRepository) Update(ctx context.Context, tx *gorm.DB, video *model.Video) error {
	result := tx.WithContext(ctx).Save(video)
	return result.Error
}

func (r *gormVideoRepository) UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.Video{}).Where("video_id = ?", videoID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormVideoRepository) Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("video_id = ?", videoID).Delete(&model.Video{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormVideoRepository) CountByCollection(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) (int64, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.Video{}).Where("collection_id = ?", collectionID).Count(&count)
	return count, result.Error
}

// filterValid は永続化データの破損したレコードを読み込み時にスキップします。
// カタログ全体の読み込みを失敗させないための回復処理です。
func filterValid(ctx context.Context, videos []*model.Video) []*model.Video {
	valid := videos[:0]
	for _, v := range videos {
		if !v.Status.Valid() {
			middleware.GetLogger(ctx).Warn("Skipping video record with invalid status",
				"video_id", v.VideoID, "status", string(v.Status))
			continue
		}
		valid = append(valid, v)
	}
	return valid
}
