// internal/repository/collection_repository.go
package repository

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, collection *model.Collection) error
	FindByID(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) (*model.Collection, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]*model.Collection, error)
	// FindActive はスケジューリング対象のコレクションを作成順 (固定の巡回順) で返します
	FindActive(ctx context.Context, db *gorm.DB) ([]*model.Collection, error)
	Update(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) error
	// AddCounters は統計カウンタを増減します (負の値も可)
	AddCounters(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, totalDelta, completedDelta int) error
}

type gormCollectionRepository struct{}

func NewGormCollectionRepository() CollectionRepository {
	return &gormCollectionRepository{}
}

func (r *gormCollectionRepository) Create(ctx context.Context, tx *gorm.DB, collection *model.Collection) error {
	return tx.WithContext(ctx).Create(collection).Error
}

func (r *gormCollectionRepository) FindByID(ctx context.Context, db *gorm.DB, collectionID uuid.UUID) (*model.Collection, error) {
	var collection model.Collection
	result := db.WithContext(ctx).Where("collection_id = ?", collectionID).First(&collection)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &collection, nil
}

func (r *gormCollectionRepository) FindAll(ctx context.Context, db *gorm.DB) ([]*model.Collection, error) {
	var collections []*model.Collection
	result := db.WithContext(ctx).Order("created_at ASC").Find(&collections)
	if result.Error != nil {
		return nil, result.Error
	}
	return collections, nil
}

func (r *gormCollectionRepository) FindActive(ctx context.Context, db *gorm.DB) ([]*model.Collection, error) {
	var collections []*model.Collection
	result := db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&collections)
	if result.Error != nil {
		return nil, result.Error
	}
	return collections, nil
}

func (r *gormCollectionRepository) Update(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.Collection{}).Where("collection_id = ?", collectionID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCollectionRepository) Delete(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID) error {
	result := tx.WithContext(ctx).Where("collection_id = ?", collectionID).Delete(&model.Collection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormCollectionRepository) AddCounters(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, totalDelta, completedDelta int) error {
	if totalDelta == 0 && completedDelta == 0 {
		return nil
	}
	// トランザクション内で読み取ってから更新する (呼び出し側がtxを渡す前提)
	collection, err := r.FindByID(ctx, tx, collectionID)
	if err != nil {
		return err
	}
	newTotal := collection.TotalVideos + totalDelta
	if newTotal < 0 {
		newTotal = 0
	}
	newCompleted := collection.CompletedVideos + completedDelta
	if newCompleted < 0 {
		newCompleted = 0
	}
	return r.Update(ctx, tx, collectionID, map[string]interface{}{
		"total_videos":     newTotal,
		"completed_videos": newCompleted,
	})
}
