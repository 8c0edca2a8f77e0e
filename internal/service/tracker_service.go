// internal/service/tracker_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go_5_replay_keep/internal/config"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StallCallback は失速検出時に呼び出されます。
// 上位層で新規学習セッションを復習セッションに切り替える用途に使います
type StallCallback func(videoID uuid.UUID)

// TrackerService は動画ごとの再生位置と再生セッションの状態を管理します。
// チェックポイントはプレイリストとは独立した video_id キーの副テーブルです。
type TrackerService interface {
	// GetResumePoint は保存済みの再開位置と、自動シークすべきかの判定を返します
	GetResumePoint(ctx context.Context, videoID uuid.UUID) (*model.ResumePointResponse, error)
	// SaveCheckpoint は再開位置を保存します。動画ごとに5秒間隔までレート制限されます。
	// isFinal が true の場合 (アイテム終端の書き込み) はレート制限を通過します
	SaveCheckpoint(ctx context.Context, videoID uuid.UUID, title string, seconds float64, isFinal bool) error
	// ClearCheckpoint は自然終了または恒久スキップ時に再開位置を破棄します
	ClearCheckpoint(ctx context.Context, videoID uuid.UUID) error
	ListCheckpoints(ctx context.Context) ([]*model.PlaybackCheckpoint, error)
	// HandleMediaEvent は再生サーフェスからのイベントを処理し、次の動作指示を返します
	HandleMediaEvent(ctx context.Context, videoID uuid.UUID, event model.MediaEventType) (*model.PlaybackStateResponse, error)
	// RegisterStallCallback は失速検出時のコールバックを登録します
	RegisterStallCallback(cb StallCallback)
	GetTotalPlayedSeconds(ctx context.Context) (int64, error)
}

// playbackSession は1動画分の進行中セッション状態です。mu で保護されます
type playbackSession struct {
	stallTimer  *time.Timer
	stalled     bool
	retryCount  int
	lastWriteAt time.Time
}

type trackerService struct {
	db        *gorm.DB
	cpRepo    repository.CheckpointRepository
	vidRepo   repository.VideoRepository
	statsRepo repository.PlayStatsRepository

	mu       sync.Mutex
	sessions map[uuid.UUID]*playbackSession
	stallCb  StallCallback

	// テストから差し替えるためフィールドに持つ
	now           func() time.Time
	stallTimeout  time.Duration
	writeInterval time.Duration
	historyLimit  int
}

func NewTrackerService(db *gorm.DB, cpRepo repository.CheckpointRepository, vidRepo repository.VideoRepository, statsRepo repository.PlayStatsRepository) TrackerService {
	return &trackerService{
		db:            db,
		cpRepo:        cpRepo,
		vidRepo:       vidRepo,
		statsRepo:     statsRepo,
		sessions:      make(map[uuid.UUID]*playbackSession),
		now:           time.Now,
		stallTimeout:  config.StallTimeout,
		writeInterval: config.CheckpointWriteInterval,
		historyLimit:  config.CheckpointHistoryLimit,
	}
}

func (s *trackerService) RegisterStallCallback(cb StallCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stallCb = cb
}

func (s *trackerService) GetResumePoint(ctx context.Context, videoID uuid.UUID) (*model.ResumePointResponse, error) {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	response := &model.ResumePointResponse{VideoID: videoID}

	checkpoint, err := s.cpRepo.FindByVideoID(ctx, s.db, videoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return response, nil
		}
		logger.Error("Failed to find checkpoint", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "再開位置の取得に失敗しました。", "", err)
	}
	response.Seconds = checkpoint.LastPlayedSeconds

	// 先頭付近と末尾付近のチェックポイントは再開不要として扱う
	edge := config.ResumeEdgeWindow.Seconds()
	if checkpoint.LastPlayedSeconds <= edge {
		return response, nil
	}
	video, err := s.vidRepo.FindByID(ctx, s.db, videoID)
	if err == nil && video.DurationSec > 0 && checkpoint.LastPlayedSeconds >= video.DurationSec-edge {
		return response, nil
	}
	response.ShouldResume = true
	return response, nil
}

func (s *trackerService) SaveCheckpoint(ctx context.Context, videoID uuid.UUID, title string, seconds float64, isFinal bool) error {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)
	now := s.now()

	if !isFinal && !s.allowWrite(videoID, now) {
		logger.Debug("Checkpoint write rate limited", "seconds", seconds)
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 再生済み秒数の加算分は直前のチェックポイントとの差分から求める
		var delta float64
		previous, err := s.cpRepo.FindByVideoID(ctx, tx, videoID)
		if err == nil {
			delta = seconds - previous.LastPlayedSeconds
		} else if errors.Is(err, model.ErrNotFound) {
			delta = seconds
		} else {
			return err
		}

		checkpoint := &model.PlaybackCheckpoint{
			VideoID:           videoID,
			Title:             title,
			LastPlayedSeconds: seconds,
			LastPlayedAt:      now,
		}
		if err := s.cpRepo.Upsert(ctx, tx, checkpoint, s.historyLimit); err != nil {
			return err
		}
		// シーク巻き戻し等で負になった差分は加算しない
		if delta > 0 {
			return s.statsRepo.AddSeconds(ctx, tx, int64(delta))
		}
		return nil
	})
	if err != nil {
		// 再生中の書き込み失敗はUIの進行を止めない。ログに残して握りつぶす
		logger.Warn("Failed to persist checkpoint, discarding", "error", err, "seconds", seconds)
	}
	return nil
}

// allowWrite は動画ごとの書き込み間隔を確認し、通過時に最終書き込み時刻を更新します
func (s *trackerService) allowWrite(videoID uuid.UUID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[videoID]
	if session == nil {
		session = &playbackSession{}
		s.sessions[videoID] = session
	}
	if !session.lastWriteAt.IsZero() && now.Sub(session.lastWriteAt) < s.writeInterval {
		return false
	}
	session.lastWriteAt = now
	return true
}

func (s *trackerService) ClearCheckpoint(ctx context.Context, videoID uuid.UUID) error {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	err := s.cpRepo.Delete(ctx, s.db, videoID)
	if err != nil {
		logger.Error("Failed to clear checkpoint", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "再開位置の削除に失敗しました。", "", err)
	}
	return nil
}

func (s *trackerService) ListCheckpoints(ctx context.Context) ([]*model.PlaybackCheckpoint, error) {
	checkpoints, err := s.cpRepo.List(ctx, s.db)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to list checkpoints", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "再開位置一覧の取得に失敗しました。", "", err)
	}
	return checkpoints, nil
}

func (s *trackerService) GetTotalPlayedSeconds(ctx context.Context) (int64, error) {
	total, err := s.statsRepo.GetTotalSeconds(ctx, s.db)
	if err != nil {
		middleware.GetLogger(ctx).Error("Failed to get total played seconds", "error", err)
		return 0, model.NewAppError("INTERNAL_SERVER_ERROR", "累計再生時間の取得に失敗しました。", "", err)
	}
	return total, nil
}

func (s *trackerService) HandleMediaEvent(ctx context.Context, videoID uuid.UUID, event model.MediaEventType) (*model.PlaybackStateResponse, error) {
	logger := middleware.GetLogger(ctx).With("video_id", videoID, "event", string(event))

	switch event {
	case model.EventLoadStarted:
		return s.handleLoadStarted(videoID), nil
	case model.EventPlaybackStarted:
		return s.handlePlaybackStarted(videoID), nil
	case model.EventEnded:
		return s.handleEnded(ctx, videoID), nil
	case model.EventMissing:
		return s.handleMissing(logger, videoID), nil
	case model.EventLoadError:
		return s.handleLoadError(logger, videoID), nil
	case model.EventClosed:
		return s.handleClosed(videoID), nil
	}
	return nil, model.NewAppError("INVALID_INPUT", "不明な再生イベントです。", "event", model.ErrInvalidInput)
}

// handleLoadStarted は失速検出タイマーを起動します。
// タイムアウトまでに再生が始まらなければセッションを失速扱いにします
func (s *trackerService) handleLoadStarted(videoID uuid.UUID) *model.PlaybackStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[videoID]
	if session == nil {
		session = &playbackSession{}
		s.sessions[videoID] = session
	}
	if session.stallTimer != nil {
		session.stallTimer.Stop()
	}
	session.stalled = false
	session.stallTimer = time.AfterFunc(s.stallTimeout, func() {
		s.fireStall(videoID)
	})
	return s.stateLocked(videoID, session, model.ActionNone)
}

func (s *trackerService) fireStall(videoID uuid.UUID) {
	s.mu.Lock()
	session := s.sessions[videoID]
	if session == nil {
		s.mu.Unlock()
		return
	}
	session.stalled = true
	cb := s.stallCb
	s.mu.Unlock()

	// コールバックはロック外で呼ぶ
	if cb != nil {
		cb(videoID)
	}
}

func (s *trackerService) handlePlaybackStarted(videoID uuid.UUID) *model.PlaybackStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[videoID]
	if session == nil {
		session = &playbackSession{}
		s.sessions[videoID] = session
	}
	if session.stallTimer != nil {
		session.stallTimer.Stop()
		session.stallTimer = nil
	}
	session.stalled = false
	return s.stateLocked(videoID, session, model.ActionNone)
}

func (s *trackerService) handleEnded(ctx context.Context, videoID uuid.UUID) *model.PlaybackStateResponse {
	logger := middleware.GetLogger(ctx).With("video_id", videoID)

	s.mu.Lock()
	session := s.sessions[videoID]
	if session != nil && session.stallTimer != nil {
		session.stallTimer.Stop()
	}
	delete(s.sessions, videoID)
	s.mu.Unlock()

	// 自然終了したアイテムの再開位置は不要になる
	if err := s.cpRepo.Delete(ctx, s.db, videoID); err != nil {
		logger.Warn("Failed to clear checkpoint on ended, discarding", "error", err)
	}
	return &model.PlaybackStateResponse{VideoID: videoID, Action: model.ActionNone}
}

// handleMissing はファイル欠落を処理します。短い待ちの後に自動で
// 次のアイテムへ進む指示を返します。プレイリスト全体は中断しません
func (s *trackerService) handleMissing(logger *slog.Logger, videoID uuid.UUID) *model.PlaybackStateResponse {
	s.mu.Lock()
	session := s.sessions[videoID]
	if session != nil && session.stallTimer != nil {
		session.stallTimer.Stop()
		session.stallTimer = nil
	}
	s.mu.Unlock()

	logger.Warn("Media file missing, instructing auto skip")
	return &model.PlaybackStateResponse{
		VideoID:     videoID,
		Action:      model.ActionAutoSkip,
		SkipDelayMS: int(config.MissingSkipDelay.Milliseconds()),
	}
}

// handleLoadError は欠落以外の読み込み失敗を処理します。
// 手動リトライは上限まで許可し、超えたらアイテム単位の終端エラーとして
// 明示的なスキップを要求します
func (s *trackerService) handleLoadError(logger *slog.Logger, videoID uuid.UUID) *model.PlaybackStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[videoID]
	if session == nil {
		session = &playbackSession{}
		s.sessions[videoID] = session
	}
	if session.stallTimer != nil {
		session.stallTimer.Stop()
		session.stallTimer = nil
	}
	session.retryCount++

	if session.retryCount > config.MaxLoadRetries {
		logger.Warn("Load retry limit exceeded", "retry_count", session.retryCount)
		return s.stateLocked(videoID, session, model.ActionGiveUp)
	}
	logger.Warn("Media load error, waiting for manual retry", "retry_count", session.retryCount)
	return s.stateLocked(videoID, session, model.ActionRetryWait)
}

// handleClosed は再生サーフェスが閉じられたときの後始末です。
// タイマーは破棄しますが、発行済みのチェックポイント書き込みは取り消しません
func (s *trackerService) handleClosed(videoID uuid.UUID) *model.PlaybackStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions[videoID]
	if session != nil && session.stallTimer != nil {
		session.stallTimer.Stop()
	}
	delete(s.sessions, videoID)
	return &model.PlaybackStateResponse{VideoID: videoID, Action: model.ActionNone}
}

func (s *trackerService) stateLocked(videoID uuid.UUID, session *playbackSession, action model.PlaybackAction) *model.PlaybackStateResponse {
	return &model.PlaybackStateResponse{
		VideoID:    videoID,
		Action:     action,
		Stalled:    session.stalled,
		RetryCount: session.retryCount,
	}
}
