// internal/service/tracker_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"go_5_replay_keep/internal/config"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDBTracker() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic("failed to connect database for tracker service testing: " + err.Error())
	}
	err = db.AutoMigrate(&model.PlaybackCheckpoint{}, &model.PlayStats{})
	if err != nil {
		panic("failed to migrate database for tracker service testing: " + err.Error())
	}
	return db
}

func newTestTracker(db *gorm.DB, cpRepo *mocks.CheckpointRepository, vidRepo *mocks.VideoRepository, statsRepo *mocks.PlayStatsRepository) *trackerService {
	return NewTrackerService(db, cpRepo, vidRepo, statsRepo).(*trackerService)
}

// --- Test SaveCheckpoint ---
func Test_trackerService_SaveCheckpoint(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBTracker()
	videoID := uuid.New()

	t.Run("正常系: 初回保存は再生秒数がそのまま加算される", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(nil, model.ErrNotFound).Once()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(cp *model.PlaybackCheckpoint) bool {
			return cp.VideoID == videoID && cp.LastPlayedSeconds == 42 && cp.Title == "ep1"
		}), config.CheckpointHistoryLimit).Return(nil).Once()
		mockStatsRepo.On("AddSeconds", ctx, mock.AnythingOfType("*gorm.DB"), int64(42)).Return(nil).Once()

		err := tracker.SaveCheckpoint(ctx, videoID, "ep1", 42, false)

		require.NoError(t, err)
		mockCpRepo.AssertExpectations(t)
		mockStatsRepo.AssertExpectations(t)
	})

	t.Run("正常系: 前回位置との正の差分のみ加算される", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		previous := &model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 30}
		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(previous, nil).Once()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PlaybackCheckpoint"), config.CheckpointHistoryLimit).
			Return(nil).Once()
		mockStatsRepo.On("AddSeconds", ctx, mock.AnythingOfType("*gorm.DB"), int64(12)).Return(nil).Once()

		err := tracker.SaveCheckpoint(ctx, videoID, "ep1", 42, false)

		require.NoError(t, err)
		mockStatsRepo.AssertExpectations(t)
	})

	t.Run("正常系: シーク巻き戻しによる負の差分は加算しない", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		previous := &model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 100}
		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(previous, nil).Once()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PlaybackCheckpoint"), config.CheckpointHistoryLimit).
			Return(nil).Once()

		err := tracker.SaveCheckpoint(ctx, videoID, "ep1", 50, false)

		require.NoError(t, err)
		mockStatsRepo.AssertNotCalled(t, "AddSeconds", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("正常系: 書き込み間隔内の連続保存はレート制限される", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		base := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
		current := base
		tracker.now = func() time.Time { return current }

		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(nil, model.ErrNotFound).Once()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PlaybackCheckpoint"), config.CheckpointHistoryLimit).
			Return(nil).Once()
		mockStatsRepo.On("AddSeconds", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("int64")).Return(nil).Once()

		require.NoError(t, tracker.SaveCheckpoint(ctx, videoID, "ep1", 10, false))

		// 2秒後の書き込みは捨てられる (Upsertは1回のまま)
		current = base.Add(2 * time.Second)
		require.NoError(t, tracker.SaveCheckpoint(ctx, videoID, "ep1", 12, false))
		mockCpRepo.AssertNumberOfCalls(t, "Upsert", 1)

		// 間隔を超えれば再び書き込まれる
		current = base.Add(6 * time.Second)
		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(&model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 10}, nil).Once()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PlaybackCheckpoint"), config.CheckpointHistoryLimit).
			Return(nil).Once()
		mockStatsRepo.On("AddSeconds", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("int64")).Return(nil).Once()
		require.NoError(t, tracker.SaveCheckpoint(ctx, videoID, "ep1", 16, false))
		mockCpRepo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("正常系: 終端書き込みはレート制限を通過する", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(nil, model.ErrNotFound).Twice()
		mockCpRepo.On("Upsert", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.PlaybackCheckpoint"), config.CheckpointHistoryLimit).
			Return(nil).Twice()
		mockStatsRepo.On("AddSeconds", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("int64")).Return(nil).Twice()

		require.NoError(t, tracker.SaveCheckpoint(ctx, videoID, "ep1", 10, false))
		// 直後でも isFinal=true なら書き込まれる
		require.NoError(t, tracker.SaveCheckpoint(ctx, videoID, "ep1", 11, true))
		mockCpRepo.AssertNumberOfCalls(t, "Upsert", 2)
	})

	t.Run("正常系: 永続化の失敗は握りつぶして再生を止めない", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		mockStatsRepo := new(mocks.PlayStatsRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), mockStatsRepo)

		mockCpRepo.On("FindByVideoID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
			Return(nil, assert.AnError).Once()

		err := tracker.SaveCheckpoint(ctx, videoID, "ep1", 42, false)

		assert.NoError(t, err)
	})
}

// --- Test GetResumePoint ---
func Test_trackerService_GetResumePoint(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBTracker()
	videoID := uuid.New()

	tests := []struct {
		name        string
		setupMock   func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository)
		wantSeconds float64
		wantResume  bool
	}{
		{
			name: "正常系: チェックポイント無しは再開不要",
			setupMock: func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository) {
				mc.On("FindByVideoID", ctx, db, videoID).Return(nil, model.ErrNotFound).Once()
			},
			wantSeconds: 0,
			wantResume:  false,
		},
		{
			name: "正常系: 先頭付近のチェックポイントは無視する",
			setupMock: func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository) {
				mc.On("FindByVideoID", ctx, db, videoID).
					Return(&model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 5}, nil).Once()
			},
			wantSeconds: 5,
			wantResume:  false,
		},
		{
			name: "正常系: 中間位置からは再開する",
			setupMock: func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository) {
				mc.On("FindByVideoID", ctx, db, videoID).
					Return(&model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 60}, nil).Once()
				mv.On("FindByID", ctx, db, videoID).
					Return(&model.Video{VideoID: videoID, DurationSec: 120}, nil).Once()
			},
			wantSeconds: 60,
			wantResume:  true,
		},
		{
			name: "正常系: 末尾付近のチェックポイントは無視する",
			setupMock: func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository) {
				mc.On("FindByVideoID", ctx, db, videoID).
					Return(&model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 115}, nil).Once()
				mv.On("FindByID", ctx, db, videoID).
					Return(&model.Video{VideoID: videoID, DurationSec: 120}, nil).Once()
			},
			wantSeconds: 115,
			wantResume:  false,
		},
		{
			name: "正常系: 動画の長さが不明なら中間位置として再開する",
			setupMock: func(mc *mocks.CheckpointRepository, mv *mocks.VideoRepository) {
				mc.On("FindByVideoID", ctx, db, videoID).
					Return(&model.PlaybackCheckpoint{VideoID: videoID, LastPlayedSeconds: 60}, nil).Once()
				mv.On("FindByID", ctx, db, videoID).Return(nil, model.ErrNotFound).Once()
			},
			wantSeconds: 60,
			wantResume:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCpRepo := new(mocks.CheckpointRepository)
			mockVidRepo := new(mocks.VideoRepository)
			tracker := newTestTracker(db, mockCpRepo, mockVidRepo, new(mocks.PlayStatsRepository))
			tt.setupMock(mockCpRepo, mockVidRepo)

			resume, err := tracker.GetResumePoint(ctx, videoID)

			require.NoError(t, err)
			require.NotNil(t, resume)
			assert.Equal(t, tt.wantSeconds, resume.Seconds)
			assert.Equal(t, tt.wantResume, resume.ShouldResume)
			mockCpRepo.AssertExpectations(t)
			mockVidRepo.AssertExpectations(t)
		})
	}
}

// --- Test HandleMediaEvent (失速検出) ---
func Test_trackerService_StallDetection(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBTracker()
	videoID := uuid.New()

	t.Run("正常系: タイムアウトまでに再生が始まらなければ失速扱い", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))
		tracker.stallTimeout = 20 * time.Millisecond

		stalled := make(chan uuid.UUID, 1)
		tracker.RegisterStallCallback(func(id uuid.UUID) {
			stalled <- id
		})

		state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventLoadStarted)
		require.NoError(t, err)
		assert.Equal(t, model.ActionNone, state.Action)
		assert.False(t, state.Stalled)

		select {
		case id := <-stalled:
			assert.Equal(t, videoID, id)
		case <-time.After(time.Second):
			t.Fatal("stall callback was not invoked")
		}
	})

	t.Run("正常系: 再生開始でタイマーは解除される", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))
		tracker.stallTimeout = 30 * time.Millisecond

		stalled := make(chan uuid.UUID, 1)
		tracker.RegisterStallCallback(func(id uuid.UUID) {
			stalled <- id
		})

		_, err := tracker.HandleMediaEvent(ctx, videoID, model.EventLoadStarted)
		require.NoError(t, err)
		state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventPlaybackStarted)
		require.NoError(t, err)
		assert.False(t, state.Stalled)

		select {
		case <-stalled:
			t.Fatal("stall callback should not be invoked after playback started")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("正常系: サーフェスを閉じればタイマーは破棄される", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))
		tracker.stallTimeout = 30 * time.Millisecond

		stalled := make(chan uuid.UUID, 1)
		tracker.RegisterStallCallback(func(id uuid.UUID) {
			stalled <- id
		})

		_, err := tracker.HandleMediaEvent(ctx, videoID, model.EventLoadStarted)
		require.NoError(t, err)
		_, err = tracker.HandleMediaEvent(ctx, videoID, model.EventClosed)
		require.NoError(t, err)

		select {
		case <-stalled:
			t.Fatal("stall callback should not be invoked after surface closed")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

// --- Test HandleMediaEvent (欠落とエラー) ---
func Test_trackerService_HandleMediaEvent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBTracker()
	videoID := uuid.New()

	t.Run("正常系: 欠落は短い待ちの後の自動スキップを指示", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))

		state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventMissing)

		require.NoError(t, err)
		assert.Equal(t, model.ActionAutoSkip, state.Action)
		assert.Equal(t, 1200, state.SkipDelayMS)
	})

	t.Run("正常系: 読み込みエラーは上限までリトライ待ち、超えたら断念", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))

		for i := 1; i <= config.MaxLoadRetries; i++ {
			state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventLoadError)
			require.NoError(t, err)
			assert.Equal(t, model.ActionRetryWait, state.Action)
			assert.Equal(t, i, state.RetryCount)
		}

		state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventLoadError)
		require.NoError(t, err)
		assert.Equal(t, model.ActionGiveUp, state.Action)
	})

	t.Run("正常系: 自然終了はチェックポイントを破棄する", func(t *testing.T) {
		mockCpRepo := new(mocks.CheckpointRepository)
		tracker := newTestTracker(db, mockCpRepo, new(mocks.VideoRepository), new(mocks.PlayStatsRepository))

		mockCpRepo.On("Delete", ctx, db, videoID).Return(nil).Once()

		state, err := tracker.HandleMediaEvent(ctx, videoID, model.EventEnded)

		require.NoError(t, err)
		assert.Equal(t, model.ActionNone, state.Action)
		mockCpRepo.AssertExpectations(t)
	})

	t.Run("異常系: 不明なイベント", func(t *testing.T) {
		tracker := newTestTracker(db, new(mocks.CheckpointRepository), new(mocks.VideoRepository), new(mocks.PlayStatsRepository))

		state, err := tracker.HandleMediaEvent(ctx, videoID, model.MediaEventType("bogus"))

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Nil(t, state)
	})
}
