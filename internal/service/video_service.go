// internal/service/video_service.go
package service

import (
	"context"
	"errors"
	"io"

	"go_5_replay_keep/internal/blobstore"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddVideoInput は取り込み時のメタデータです
type AddVideoInput struct {
	CollectionID uuid.UUID
	Name         string
	MediaType    model.MediaType
	MimeType     string
	DurationSec  float64
}

type VideoService interface {
	// AddVideo はメディアファイルをブロブストアに保存し、カタログに登録します。
	// 話数は取り込み順に採番されます
	AddVideo(ctx context.Context, input AddVideoInput, file io.Reader) (*model.Video, error)
	GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error)
	ListVideos(ctx context.Context, collectionID *uuid.UUID) ([]*model.Video, error)
	PatchVideo(ctx context.Context, videoID uuid.UUID, req *model.PatchVideoRequest) (*model.Video, error)
	// DeleteVideo はカタログとブロブストアから動画を取り除き、コレクションカウンタを調整します
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error
	// GetMediaPath は再生用にファイルパスを返します。欠落時は ErrMediaMissing
	GetMediaPath(ctx context.Context, videoID uuid.UUID) (string, *model.Video, error)
}

type videoService struct {
	db       *gorm.DB
	vidRepo  repository.VideoRepository
	collRepo repository.CollectionRepository
	cpRepo   repository.CheckpointRepository
	store    blobstore.Store
}

func NewVideoService(db *gorm.DB, vidRepo repository.VideoRepository, collRepo repository.CollectionRepository, cpRepo repository.CheckpointRepository, store blobstore.Store) VideoService {
	return &videoService{
		db:       db,
		vidRepo:  vidRepo,
		collRepo: collRepo,
		cpRepo:   cpRepo,
		store:    store,
	}
}

func (s *videoService) AddVideo(ctx context.Context, input AddVideoInput, file io.Reader) (*model.Video, error) {
	logger := middleware.GetLogger(ctx).With("collection_id", input.CollectionID)

	if _, err := s.collRepo.FindByID(ctx, s.db, input.CollectionID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "コレクションが見つかりませんでした。", "collection_id", err)
		}
		logger.Error("Failed to find collection for video add", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画の追加に失敗しました。", "", err)
	}

	count, err := s.vidRepo.CountByCollection(ctx, s.db, input.CollectionID)
	if err != nil {
		logger.Error("Failed to count videos for episode numbering", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画の追加に失敗しました。", "", err)
	}

	mediaType := input.MediaType
	if mediaType == "" {
		mediaType = model.MediaTypeVideo
	}
	video := &model.Video{
		VideoID:       uuid.New(),
		CollectionID:  input.CollectionID,
		Name:          input.Name,
		EpisodeNumber: int(count) + 1,
		MediaType:     mediaType,
		Status:        model.StatusNew,
		DurationSec:   input.DurationSec,
		MimeType:      input.MimeType,
	}

	// 先にブロブを書き、レコード登録に失敗したら片付ける
	size, err := s.store.SaveFile(video.VideoID, file)
	if err != nil {
		logger.Error("Failed to save media file", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "メディアファイルの保存に失敗しました。", "", err)
	}
	video.FileSize = size

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vidRepo.Create(ctx, tx, video); err != nil {
			return err
		}
		return s.collRepo.AddCounters(ctx, tx, input.CollectionID, 1, 0)
	})
	if err != nil {
		if removeErr := s.store.DeleteFile(video.VideoID); removeErr != nil {
			logger.Warn("Failed to clean up media file after failed insert", "error", removeErr)
		}
		logger.Error("Failed to register video", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画の追加に失敗しました。", "", err)
	}

	logger.Info("Video added", "video_id", video.VideoID, "episode_number", video.EpisodeNumber, "file_size", size)
	return video, nil
}

func (s *videoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	video, err := s.vidRepo.FindByID(ctx, s.db, videoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "動画が見つかりませんでした。", "", err)
		}
		middleware.GetLogger(ctx).Error("Failed to find video", "error", err, "video_id", videoID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画の取得に失敗しました。", "", err)
	}
	return video, nil
}

func (s *videoService) ListVideos(ctx context.Context, collectionID *uuid.UUID) ([]*model.Video, error) {
	var videos []*model.Video
	var err error
	if collectionID != nil {
		videos, err = s.vidRepo.FindByCollection(ctx, s.db, *collectionID)
	} else {
		videos, err = s.vidRepo.FindAll(ctx, s.db)
	}
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list videos", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画一覧の取得に失敗しました。", "", err)
	}
	return videos, nil
}

func (s *videoService) PatchVideo(ctx context.Context, videoID uuid.UUID, req *model.PatchVideoRequest) (*model.Video, error) {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.MediaType != nil {
		updates["media_type"] = *req.MediaType
	}
	if req.DurationSec != nil {
		updates["duration_sec"] = *req.DurationSec
	}
	if len(updates) == 0 {
		return s.GetVideo(ctx, videoID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.vidRepo.UpdateFields(ctx, tx, videoID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "動画が見つかりませんでした。", "", err)
		}
		logger.Error("Failed to patch video", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "動画の更新に失敗しました。", "", err)
	}
	return s.GetVideo(ctx, videoID)
}

func (s *videoService) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	video, err := s.vidRepo.FindByID(ctx, s.db, videoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "動画が見つかりませんでした。", "", err)
		}
		logger.Error("Failed to find video for delete", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "動画の削除に失敗しました。", "", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vidRepo.Delete(ctx, tx, videoID); err != nil {
			return err
		}
		if err := s.cpRepo.Delete(ctx, tx, videoID); err != nil {
			return err
		}
		completedDelta := 0
		if video.Status == model.StatusCompleted {
			completedDelta = -1
		}
		return s.collRepo.AddCounters(ctx, tx, video.CollectionID, -1, completedDelta)
	})
	if err != nil {
		logger.Error("Failed to delete video", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "動画の削除に失敗しました。", "", err)
	}

	if err := s.store.DeleteFile(videoID); err != nil {
		logger.Warn("Failed to delete media file, discarding", "error", err)
	}
	logger.Info("Video deleted", "collection_id", video.CollectionID)
	return nil
}

func (s *videoService) GetMediaPath(ctx context.Context, videoID uuid.UUID) (string, *model.Video, error) {
	video, err := s.GetVideo(ctx, videoID)
	if err != nil {
		return "", nil, err
	}
	path, err := s.store.GetFile(videoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil, model.NewAppError("MEDIA_MISSING", "メディアファイルが見つかりませんでした。", "", model.ErrMediaMissing)
		}
		middleware.GetLogger(ctx).Error("Failed to resolve media path", "error", err, "video_id", videoID)
		return "", nil, model.NewAppError("INTERNAL_SERVER_ERROR", "メディアファイルの取得に失敗しました。", "", err)
	}
	return path, video, nil
}
