// internal/service/scheduler_service.go
package service

import (
	"context"
	"errors"
	"time"

	"go_5_replay_keep/internal/config"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchedulerService は忘却曲線ポリシーに基づく出題の決定を担当します。
// Video の status / review_count / next_review_date と Collection のカウンタのみを
// 書き換え、プレイリスト自体の所有はしません (作成時を除く)。
type SchedulerService interface {
	// GeneratePreview は本日のタスク一覧を返します。副作用のない読み取りです
	GeneratePreview(ctx context.Context, isExtraSession bool) (*model.PlaylistPreview, error)
	// MaterializePlaylist は本日のプレイリストを再利用または新規作成します
	MaterializePlaylist(ctx context.Context, playlistType model.PlaylistType, isExtraSession, forceRebuild bool) (*model.DailyPlaylist, error)
	// FindTodayUnfinished は本日の未完了プレイリストを検索します
	FindTodayUnfinished(ctx context.Context, playlistType model.PlaylistType, isExtraSession bool) (*model.DailyPlaylist, error)
	// RecordCompletion は1回分の復習パス完了として学習状態を前進させます
	RecordCompletion(ctx context.Context, videoID uuid.UUID) error
	// RecordCompletionInTx は呼び出し側のトランザクション内で RecordCompletion 相当を行います
	RecordCompletionInTx(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
}

type schedulerService struct {
	db       *gorm.DB
	collRepo repository.CollectionRepository
	vidRepo  repository.VideoRepository
	plRepo   repository.PlaylistRepository
	cfg      *config.Config
	now      func() time.Time // テストから差し替えるための時刻取得関数
}

func NewSchedulerService(db *gorm.DB, collRepo repository.CollectionRepository, vidRepo repository.VideoRepository, plRepo repository.PlaylistRepository, cfg *config.Config) SchedulerService {
	return &schedulerService{
		db:       db,
		collRepo: collRepo,
		vidRepo:  vidRepo,
		plRepo:   plRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// truncateToDay はローカルタイムのその日の0時に切り詰めます
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isDue は動画が本日復習対象かを判定します。
// 日付比較は両辺をその日の0時に切り詰めて行い、初回学習直後 (review_count == 0) の
// アイテムに限り、日付境界とタイムゾーンの丸め誤差を吸収するため前後48時間を許容します。
func isDue(v *model.Video, now time.Time) bool {
	if v.NextReviewDate == nil || v.Status == model.StatusCompleted {
		return false
	}
	reviewDay := truncateToDay(*v.NextReviewDate)
	today := truncateToDay(now)
	if !reviewDay.After(today) {
		return true
	}
	if v.ReviewCount == 0 {
		diff := now.Sub(*v.NextReviewDate)
		if diff < 0 {
			diff = -diff
		}
		if diff < config.FreshReviewGraceWindow {
			return true
		}
	}
	return false
}

// roundRobinSelect はコレクションを固定順で巡回しながら1件ずつ取り出します。
// あるroundで全コレクションから1件も取れなくなるか、上限に達した時点で打ち切ります。
// 複数のコレクションにアイテムがある限り、単一のコレクションが他を飢餓させることはありません。
func roundRobinSelect(queues [][]*model.Video, limit int) []*model.Video {
	result := make([]*model.Video, 0, limit)
	round := 0
	for len(result) < limit {
		took := false
		for _, queue := range queues {
			if round < len(queue) {
				result = append(result, queue[round])
				took = true
				if len(result) >= limit {
					break
				}
			}
		}
		if !took {
			break
		}
		round++
	}
	return result
}

// selectNewVideos は本日の新規学習対象をコレクション横断の巡回で選びます
func (s *schedulerService) selectNewVideos(ctx context.Context, isExtraSession bool) ([]*model.Video, error) {
	collections, err := s.collRepo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	queues := make([][]*model.Video, 0, len(collections))
	for _, c := range collections {
		queue, err := s.vidRepo.FindNewByCollection(ctx, s.db, c.CollectionID)
		if err != nil {
			return nil, err
		}
		queues = append(queues, queue)
	}
	limit := config.MaxNewPerDay
	if isExtraSession {
		limit += config.ExtraSessionBonus
	}
	return roundRobinSelect(queues, limit), nil
}

// selectReviewVideos は本日の復習対象を選びます。上限は実質的に効きません
func (s *schedulerService) selectReviewVideos(ctx context.Context) ([]*model.Video, error) {
	logger := middleware.GetLogger(ctx)
	collections, err := s.collRepo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	now := s.now()
	queues := make([][]*model.Video, 0, len(collections))
	for _, c := range collections {
		videos, err := s.vidRepo.FindByCollection(ctx, s.db, c.CollectionID)
		if err != nil {
			return nil, err
		}
		due := make([]*model.Video, 0, len(videos))
		for _, v := range videos {
			// 不正なstatus値を持つレコードは警告して読み飛ばします
			if !v.Status.Valid() {
				logger.Warn("Skipping video with unknown status", "video_id", v.VideoID, "status", string(v.Status))
				continue
			}
			if isDue(v, now) {
				due = append(due, v)
			}
		}
		queues = append(queues, due)
	}
	return roundRobinSelect(queues, s.cfg.App.ReviewLimit), nil
}

func (s *schedulerService) buildNewItems(videos []*model.Video) []model.PlaylistItem {
	items := make([]model.PlaylistItem, 0, len(videos))
	for i, v := range videos {
		items = append(items, model.PlaylistItem{
			ItemID:       uuid.New(),
			VideoID:      v.VideoID,
			Position:     i,
			ReviewType:   model.PlaylistTypeNew,
			ReviewNumber: 1,
		})
	}
	return items
}

func (s *schedulerService) buildReviewItems(videos []*model.Video) []model.PlaylistItem {
	now := s.now()
	items := make([]model.PlaylistItem, 0, len(videos))
	for i, v := range videos {
		days := 0
		if v.FirstPlayDate != nil {
			days = int(now.Sub(*v.FirstPlayDate).Hours() / 24)
		}
		items = append(items, model.PlaylistItem{
			ItemID:             uuid.New(),
			VideoID:            v.VideoID,
			Position:           i,
			ReviewType:         model.PlaylistTypeReview,
			ReviewNumber:       v.ReviewCount + 1,
			DaysSinceFirstPlay: days,
			// 間隔の長い後半の復習 (15/30日) は映像での視聴を推奨する
			RecommendVideoMode: v.ReviewCount >= config.RecommendVideoFromReviewCount,
		})
	}
	return items
}

func (s *schedulerService) GeneratePreview(ctx context.Context, isExtraSession bool) (*model.PlaylistPreview, error) {
	logger := middleware.GetLogger(ctx)

	newVideos, err := s.selectNewVideos(ctx, isExtraSession)
	if err != nil {
		logger.Error("Failed to select new videos for preview", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "本日のタスクの取得に失敗しました。", "", err)
	}
	reviewVideos, err := s.selectReviewVideos(ctx)
	if err != nil {
		logger.Error("Failed to select review videos for preview", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "本日のタスクの取得に失敗しました。", "", err)
	}

	preview := &model.PlaylistPreview{
		NewItems:       s.buildNewItems(newVideos),
		ReviewItems:    s.buildReviewItems(reviewVideos),
		IsExtraSession: isExtraSession,
	}
	preview.TotalCount = len(preview.NewItems) + len(preview.ReviewItems)

	logger.Info("Generated playlist preview",
		"new_count", len(preview.NewItems), "review_count", len(preview.ReviewItems), "is_extra", isExtraSession)
	return preview, nil
}

func (s *schedulerService) FindTodayUnfinished(ctx context.Context, playlistType model.PlaylistType, isExtraSession bool) (*model.DailyPlaylist, error) {
	logger := middleware.GetLogger(ctx)

	today := truncateToDay(s.now())
	playlist, err := s.plRepo.FindUnfinishedByDay(ctx, s.db, today, playlistType, s.matchExtra(playlistType, isExtraSession))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "本日の未完了プレイリストはありません。", "", err)
		}
		logger.Error("Failed to find unfinished playlist", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの検索に失敗しました。", "", err)
	}
	return playlist, nil
}

// matchExtra は再利用検索で加餐フラグまで一致させるかを決めます。
// 設定で無効化されている場合、当日の未完了new型を無条件に再利用します。
func (s *schedulerService) matchExtra(playlistType model.PlaylistType, isExtraSession bool) *bool {
	if playlistType != model.PlaylistTypeNew {
		return nil
	}
	if !s.cfg.App.MatchExtraSession {
		return nil
	}
	return &isExtraSession
}

func (s *schedulerService) MaterializePlaylist(ctx context.Context, playlistType model.PlaylistType, isExtraSession, forceRebuild bool) (*model.DailyPlaylist, error) {
	logger := middleware.GetLogger(ctx).With("playlist_type", string(playlistType), "is_extra", isExtraSession)

	if !playlistType.Valid() {
		return nil, model.NewAppError("INVALID_INPUT", "プレイリスト種別が不正です。", "playlist_type", model.ErrInvalidInput)
	}

	today := truncateToDay(s.now())

	// new型は当日の未完了プレイリストを再利用する。
	// review型の再利用は呼び出し側のFindTodayUnfinishedに委ねる
	if playlistType == model.PlaylistTypeNew && !forceRebuild {
		existing, err := s.plRepo.FindUnfinishedByDay(ctx, s.db, today, playlistType, s.matchExtra(playlistType, isExtraSession))
		if err == nil {
			logger.Info("Reusing today's unfinished playlist", "playlist_id", existing.PlaylistID)
			return existing, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to look up today's playlist", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの検索に失敗しました。", "", err)
		}
	}

	var items []model.PlaylistItem
	if playlistType == model.PlaylistTypeNew {
		videos, err := s.selectNewVideos(ctx, isExtraSession)
		if err != nil {
			logger.Error("Failed to select new videos", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの作成に失敗しました。", "", err)
		}
		items = s.buildNewItems(videos)
	} else {
		videos, err := s.selectReviewVideos(ctx)
		if err != nil {
			logger.Error("Failed to select review videos", "error", err)
			return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの作成に失敗しました。", "", err)
		}
		items = s.buildReviewItems(videos)
	}

	playlist := &model.DailyPlaylist{
		PlaylistID:     uuid.New(),
		PlaylistDate:   today,
		PlaylistType:   playlistType,
		IsExtraSession: isExtraSession,
		Items:          items,
	}
	for i := range playlist.Items {
		playlist.Items[i].PlaylistID = playlist.PlaylistID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.plRepo.Create(ctx, tx, playlist)
	})
	if err != nil {
		logger.Error("Failed to create playlist", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "プレイリストの作成に失敗しました。", "", err)
	}

	// 出題対象が無い場合もエラーにはせず、空のプレイリストを返す
	if len(items) == 0 {
		logger.Info("No due items, materialized empty playlist", "playlist_id", playlist.PlaylistID)
		return playlist, nil
	}

	logger.Info("Materialized playlist", "playlist_id", playlist.PlaylistID, "item_count", len(items))
	return playlist, nil
}

func (s *schedulerService) RecordCompletion(ctx context.Context, videoID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.RecordCompletionInTx(ctx, tx, videoID)
	})
}

// RecordCompletionInTx は1回分の復習パスとして学習状態を前進させます。
// 1回の再生完了につき必ず1回だけ呼び出すこと。二重呼び出しの防止は
// プレイリスト完了側のガードで行います。
func (s *schedulerService) RecordCompletionInTx(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	video, err := s.vidRepo.FindByID(ctx, tx, videoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "対象の動画が見つかりませんでした。", "", err)
		}
		logger.Error("Failed to find video for completion", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
	}

	now := s.now()

	if video.FirstPlayDate == nil {
		// 初回再生: 翌日境界の丸め誤差を防ぐため次回日はその日の0時に切り詰める
		next := truncateToDay(now.AddDate(0, 0, config.ReviewIntervals[0]))
		updates := map[string]interface{}{
			"first_play_date":  now,
			"review_count":     1,
			"next_review_date": next,
			"status":           model.StatusLearning,
		}
		if err := s.vidRepo.UpdateFields(ctx, tx, videoID, updates); err != nil {
			logger.Error("Failed to record first completion", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
		}
		logger.Info("Recorded first completion", "next_review_date", next)
		return nil
	}

	newCount := video.ReviewCount + 1
	if newCount < config.MaxReviewPasses {
		next := now.AddDate(0, 0, config.ReviewIntervals[newCount-1])
		updates := map[string]interface{}{
			"review_count":     newCount,
			"next_review_date": next,
			"status":           model.StatusLearning,
		}
		if err := s.vidRepo.UpdateFields(ctx, tx, videoID, updates); err != nil {
			logger.Error("Failed to record review completion", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
		}
		logger.Info("Recorded review completion", "review_count", newCount, "next_review_date", next)
		return nil
	}

	// 5回目のパスで完了。次回日は持たない
	updates := map[string]interface{}{
		"review_count":     newCount,
		"next_review_date": nil,
		"status":           model.StatusCompleted,
	}
	if err := s.vidRepo.UpdateFields(ctx, tx, videoID, updates); err != nil {
		logger.Error("Failed to record final completion", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
	}
	if err := s.collRepo.AddCounters(ctx, tx, video.CollectionID, 0, 1); err != nil {
		logger.Error("Failed to increment collection completed counter", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "学習状態の更新に失敗しました。", "", err)
	}
	logger.Info("Video completed all review passes", "collection_id", video.CollectionID)
	return nil
}
