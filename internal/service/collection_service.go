// internal/service/collection_service.go
package service

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/blobstore"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionService interface {
	CreateCollection(ctx context.Context, name, description string) (*model.Collection, error)
	GetCollection(ctx context.Context, collectionID uuid.UUID) (*model.Collection, error)
	ListCollections(ctx context.Context) ([]*model.Collection, error)
	UpdateCollection(ctx context.Context, collectionID uuid.UUID, name, description string) (*model.Collection, error)
	// ToggleActive はスケジューリング対象かどうかを切り替えます
	ToggleActive(ctx context.Context, collectionID uuid.UUID) (*model.Collection, error)
	// DeleteCollection はコレクションと所属する全動画、および各動画のメディアファイルを削除します
	DeleteCollection(ctx context.Context, collectionID uuid.UUID) error
}

type collectionService struct {
	db       *gorm.DB
	collRepo repository.CollectionRepository
	vidRepo  repository.VideoRepository
	store    blobstore.Store
}

func NewCollectionService(db *gorm.DB, collRepo repository.CollectionRepository, vidRepo repository.VideoRepository, store blobstore.Store) CollectionService {
	return &collectionService{
		db:       db,
		collRepo: collRepo,
		vidRepo:  vidRepo,
		store:    store,
	}
}

func (s *collectionService) CreateCollection(ctx context.Context, name, description string) (*model.Collection, error) {
	logger := middleware.GetLogger(ctx)

	collection := &model.Collection{
		CollectionID: uuid.New(),
		Name:         name,
		Description:  description,
		IsActive:     true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.collRepo.Create(ctx, tx, collection)
	})
	if err != nil {
		logger.Error("Failed to create collection", "error", err, "name", name)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの作成に失敗しました。", "", err)
	}
	logger.Info("Collection created", "collection_id", collection.CollectionID, "name", name)
	return collection, nil
}

func (s *collectionService) GetCollection(ctx context.Context, collectionID uuid.UUID) (*model.Collection, error) {
	collection, err := s.collRepo.FindByID(ctx, s.db, collectionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "コレクションが見つかりませんでした。", "", err)
		}
		middleware.GetLogger(ctx).Error("Failed to find collection", "error", err, "collection_id", collectionID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの取得に失敗しました。", "", err)
	}
	return collection, nil
}

func (s *collectionService) ListCollections(ctx context.Context) ([]*model.Collection, error) {
	collections, err := s.collRepo.FindAll(ctx, s.db)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list collections", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コレクション一覧の取得に失敗しました。", "", err)
	}
	return collections, nil
}

func (s *collectionService) UpdateCollection(ctx context.Context, collectionID uuid.UUID, name, description string) (*model.Collection, error) {
	logger := middleware.GetLogger(ctx).With("collection_id", collectionID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.collRepo.Update(ctx, tx, collectionID, map[string]interface{}{
			"name":        name,
			"description": description,
		})
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "コレクションが見つかりませんでした。", "", err)
		}
		logger.Error("Failed to update collection", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの更新に失敗しました。", "", err)
	}
	return s.GetCollection(ctx, collectionID)
}

func (s *collectionService) ToggleActive(ctx context.Context, collectionID uuid.UUID) (*model.Collection, error) {
	logger := middleware.GetLogger(ctx).With("collection_id", collectionID)

	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.collRepo.Update(ctx, tx, collectionID, map[string]interface{}{
			"is_active": !collection.IsActive,
		})
	})
	if err != nil {
		logger.Error("Failed to toggle collection", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの更新に失敗しました。", "", err)
	}
	collection.IsActive = !collection.IsActive
	logger.Info("Collection toggled", "is_active", collection.IsActive)
	return collection, nil
}

func (s *collectionService) DeleteCollection(ctx context.Context, collectionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("collection_id", collectionID)

	videos, err := s.vidRepo.FindByCollection(ctx, s.db, collectionID)
	if err != nil {
		logger.Error("Failed to list videos for collection delete", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの削除に失敗しました。", "", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, v := range videos {
			if err := s.vidRepo.Delete(ctx, tx, v.VideoID); err != nil {
				return err
			}
		}
		return s.collRepo.Delete(ctx, tx, collectionID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "コレクションが見つかりませんでした。", "", err)
		}
		logger.Error("Failed to delete collection", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "コレクションの削除に失敗しました。", "", err)
	}

	// レコード削除確定後にメディアファイルを片付ける。
	// ファイル削除の失敗は欠落として再生時に回収されるため握りつぶす
	for _, v := range videos {
		if err := s.store.DeleteFile(v.VideoID); err != nil {
			logger.Warn("Failed to delete media file, discarding", "error", err, "video_id", v.VideoID)
		}
	}
	logger.Info("Collection deleted", "video_count", len(videos))
	return nil
}
