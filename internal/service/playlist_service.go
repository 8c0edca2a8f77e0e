// internal/service/playlist_service.go
package service

import (
	"context"
	"errors"

	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistService はデイリープレイリストのライフサイクルを所有します。
// 状態は Created → InProgress → Completed (終端) で、カーソルの前進と
// 1回限りの完了遷移だけが変更可能な操作です。履歴は削除されません。
type PlaylistService interface {
	GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.DailyPlaylist, error)
	ListHistory(ctx context.Context, limit int) ([]*model.DailyPlaylist, error)
	// AdvanceCursor は再開用のしおりとしてインデックスを保存します。
	// 単調増加の強制はしません (呼び出し側の意図に任せる)
	AdvanceCursor(ctx context.Context, playlistID uuid.UUID, index int) error
	// CompletePlaylist はプレイリストを完了にし、全アイテムの学習状態を前進させます。
	// chainToReview が true でnew型の場合、続けて復習プレイリストを用意して返します
	CompletePlaylist(ctx context.Context, playlistID uuid.UUID, chainToReview bool) (*model.CompletePlaylistResponse, error)
}

type playlistService struct {
	db        *gorm.DB
	plRepo    repository.PlaylistRepository
	scheduler SchedulerService
}

func NewPlaylistService(db *gorm.DB, plRepo repository.PlaylistRepository, scheduler SchedulerService) PlaylistService {
	return &playlistService{
		db:        db,
		plRepo:    plRepo,
		scheduler: scheduler,
	}
}

func (s *playlistService) GetPlaylist(ctx context.Context, playlistID uuid.UUID) (*model.DailyPlaylist, error) {
	playlist, err := s.plRepo.FindByID(ctx, s.db, playlistID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "プレイリストが見つかりませんでした。", "", err)
		}
		middleware.GetLogger(ctx).Error("Failed to find playlist", "error", err, "playlist_id", playlistID)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの取得に失敗しました。", "", err)
	}
	return playlist, nil
}

func (s *playlistService) ListHistory(ctx context.Context, limit int) ([]*model.DailyPlaylist, error) {
	playlists, err := s.plRepo.ListHistory(ctx, s.db, limit)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list playlist history", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "履歴の取得に失敗しました。", "", err)
	}
	return playlists, nil
}

func (s *playlistService) AdvanceCursor(ctx context.Context, playlistID uuid.UUID, index int) error {
	logger := middleware.GetLogger(ctx).With("playlist_id", playlistID)

	if index < 0 {
		return model.NewAppError("INVALID_INPUT", "再生位置が不正です。", "last_played_index", model.ErrInvalidInput)
	}

	err := s.plRepo.UpdateFields(ctx, s.db, playlistID, map[string]interface{}{
		"last_played_index": index,
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "プレイリストが見つかりませんでした。", "", err)
		}
		logger.Error("Failed to advance playlist cursor", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "再生位置の保存に失敗しました。", "", err)
	}
	logger.Debug("Advanced playlist cursor", "index", index)
	return nil
}

func (s *playlistService) CompletePlaylist(ctx context.Context, playlistID uuid.UUID, chainToReview bool) (*model.CompletePlaylistResponse, error) {
	logger := middleware.GetLogger(ctx).With("playlist_id", playlistID)

	playlist, err := s.plRepo.FindByID(ctx, s.db, playlistID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "プレイリストが見つかりませんでした。", "", err)
		}
		logger.Error("Failed to find playlist for completion", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの取得に失敗しました。", "", err)
	}

	// 完了は1回限りの遷移。二重呼び出しで全動画のreview_countが
	// 二重に進んでしまうため、完了済みならno-opで現状を返す
	if playlist.IsCompleted {
		logger.Warn("Playlist already completed, ignoring duplicate completion")
		return &model.CompletePlaylistResponse{Playlist: playlist}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.plRepo.UpdateFields(ctx, tx, playlistID, map[string]interface{}{
			"is_completed": true,
		}); err != nil {
			return err
		}
		// プレイリスト完了は全アイテム分の復習パスとして扱う。
		// 途中再開を挟んだ場合でも先行アイテムは各自の再生完了を経ているため
		for _, item := range playlist.Items {
			if err := s.scheduler.RecordCompletionInTx(ctx, tx, item.VideoID); err != nil {
				// 削除済み動画を含む古いプレイリストの完了は止めない
				if errors.Is(err, model.ErrNotFound) {
					logger.Warn("Skipping completion for missing video", "video_id", item.VideoID)
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Error("Failed to complete playlist", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの完了処理に失敗しました。", "", err)
	}
	playlist.IsCompleted = true
	logger.Info("Playlist completed", "item_count", len(playlist.Items))

	response := &model.CompletePlaylistResponse{Playlist: playlist}

	// 連鎖は呼び出し側の明示的な要求によってのみ行う (自動連鎖はしない)
	if chainToReview && playlist.PlaylistType == model.PlaylistTypeNew {
		next, err := s.chainToReview(ctx)
		if err != nil {
			// 連鎖の失敗で完了自体を失敗扱いにしない
			logger.Warn("Failed to chain to review playlist", "error", err)
		} else {
			response.NextPlaylist = next
		}
	}
	return response, nil
}

// chainToReview は既存の未完了復習プレイリストを探し、無ければ新規作成します
func (s *playlistService) chainToReview(ctx context.Context) (*model.DailyPlaylist, error) {
	existing, err := s.scheduler.FindTodayUnfinished(ctx, model.PlaylistTypeReview, false)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	return s.scheduler.MaterializePlaylist(ctx, model.PlaylistTypeReview, false, false)
}
