// internal/service/stats_service.go
package service

import (
	"context"
	"math"
	"time"

	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsService は表示用の集計値を計算します。読み取り専用で、
// すべての値は他コンポーネントの状態から導出されます。
type StatsService interface {
	GetStats(ctx context.Context) (*model.LearningStats, error)
}

type statsService struct {
	db        *gorm.DB
	collRepo  repository.CollectionRepository
	vidRepo   repository.VideoRepository
	plRepo    repository.PlaylistRepository
	statsRepo repository.PlayStatsRepository
	scheduler SchedulerService
	now       func() time.Time
}

func NewStatsService(db *gorm.DB, collRepo repository.CollectionRepository, vidRepo repository.VideoRepository, plRepo repository.PlaylistRepository, statsRepo repository.PlayStatsRepository, scheduler SchedulerService) StatsService {
	return &statsService{
		db:        db,
		collRepo:  collRepo,
		vidRepo:   vidRepo,
		plRepo:    plRepo,
		statsRepo: statsRepo,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (s *statsService) GetStats(ctx context.Context) (*model.LearningStats, error) {
	logger := middleware.GetLogger(ctx)

	collections, err := s.collRepo.FindActive(ctx, s.db)
	if err != nil {
		logger.Error("Failed to find active collections for stats", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計の取得に失敗しました。", "", err)
	}
	ids := make([]uuid.UUID, 0, len(collections))
	for _, c := range collections {
		ids = append(ids, c.CollectionID)
	}
	videos, err := s.vidRepo.FindByCollections(ctx, s.db, ids)
	if err != nil {
		logger.Error("Failed to find videos for stats", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計の取得に失敗しました。", "", err)
	}

	completed := 0
	hasUnlearned := false
	for _, v := range videos {
		switch v.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusNew:
			hasUnlearned = true
		}
	}

	preview, err := s.scheduler.GeneratePreview(ctx, false)
	if err != nil {
		return nil, err
	}

	// 加餐は本日の通常ノルマを消化済みで、未学習がまだ残っている場合のみ
	today := truncateToDay(s.now())
	quotaDone, err := s.plRepo.ExistsCompletedByDay(ctx, s.db, today, model.PlaylistTypeNew)
	if err != nil {
		logger.Error("Failed to check today's completed playlists", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計の取得に失敗しました。", "", err)
	}

	totalSeconds, err := s.statsRepo.GetTotalSeconds(ctx, s.db)
	if err != nil {
		logger.Error("Failed to get total played seconds", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "統計の取得に失敗しました。", "", err)
	}

	stats := &model.LearningStats{
		TotalVideos:        len(videos),
		CompletedVideos:    completed,
		TodayNewCount:      len(preview.NewItems),
		TodayReviewCount:   len(preview.ReviewItems),
		ActiveCollections:  len(collections),
		CanAddExtra:        quotaDone && hasUnlearned,
		PendingReviewCount: len(preview.ReviewItems),
		// 小数1位に丸めた時間
		TotalReviewHours: math.Round(float64(totalSeconds)/3600*10) / 10,
	}
	if len(videos) > 0 {
		stats.OverallProgress = int(math.Round(float64(completed) / float64(len(videos)) * 100))
	}
	return stats, nil
}
