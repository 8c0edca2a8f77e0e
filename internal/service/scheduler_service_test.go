// internal/service/scheduler_service_test.go
package service

import (
	"context"
	"errors"
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

// --- テストヘルパー関数 (インメモリDBセットアップ) ---
func setupTestDBScheduler() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // テスト中はログを抑制
	})
	if err != nil {
		panic("failed to connect database for scheduler service testing: " + err.Error())
	}
	err = db.AutoMigrate(&model.Collection{}, &model.Video{}, &model.DailyPlaylist{}, &model.PlaylistItem{})
	if err != nil {
		panic("failed to migrate database for scheduler service testing: " + err.Error())
	}
	return db
}

func newTestScheduler(db *gorm.DB, collRepo *mocks.CollectionRepository, vidRepo *mocks.VideoRepository, plRepo *mocks.PlaylistRepository, now time.Time) *schedulerService {
	cfg := &config.Config{
		App: config.AppConfig{
			MatchExtraSession: true,
			ReviewLimit:       config.MaxReviewPerDay,
		},
	}
	s := NewSchedulerService(db, collRepo, vidRepo, plRepo, cfg).(*schedulerService)
	s.now = func() time.Time { return now }
	return s
}

// --- Test roundRobinSelect ---
func Test_roundRobinSelect(t *testing.T) {
	a0 := &model.Video{VideoID: uuid.New(), Name: "a0"}
	a1 := &model.Video{VideoID: uuid.New(), Name: "a1"}
	a2 := &model.Video{VideoID: uuid.New(), Name: "a2"}
	b0 := &model.Video{VideoID: uuid.New(), Name: "b0"}

	tests := []struct {
		name      string
		queues    [][]*model.Video
		limit     int
		wantNames []string
	}{
		{
			name:      "正常系: コレクション間を巡回し、尽きたコレクションは飛ばす",
			queues:    [][]*model.Video{{a0, a1, a2}, {b0}},
			limit:     4,
			wantNames: []string{"a0", "b0", "a1", "a2"},
		},
		{
			name:      "正常系: 上限で打ち切る",
			queues:    [][]*model.Video{{a0, a1, a2}, {b0}},
			limit:     2,
			wantNames: []string{"a0", "b0"},
		},
		{
			name:      "正常系: 全キューが空なら空を返す",
			queues:    [][]*model.Video{{}, {}},
			limit:     4,
			wantNames: []string{},
		},
		{
			name:      "正常系: キュー無しでも空を返す",
			queues:    nil,
			limit:     4,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundRobinSelect(tt.queues, tt.limit)
			gotNames := make([]string, 0, len(got))
			for _, v := range got {
				gotNames = append(gotNames, v.Name)
			}
			assert.Equal(t, tt.wantNames, gotNames)
		})
	}
}

// --- Test isDue ---
func Test_isDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	// 初回学習直後 (review_count == 0) の許容幅の境界値
	within47h := now.Add(47 * time.Hour)
	beyond49h := now.Add(49 * time.Hour)

	tests := []struct {
		name  string
		video *model.Video
		want  bool
	}{
		{
			name:  "正常系: 次回日が本日中なら時刻に関係なく対象",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 1, NextReviewDate: &now},
			want:  true,
		},
		{
			name:  "正常系: 次回日が過去なら対象",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 2, NextReviewDate: &yesterday},
			want:  true,
		},
		{
			name:  "正常系: 次回日が明日なら対象外",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 2, NextReviewDate: &tomorrow},
			want:  false,
		},
		{
			name:  "正常系: review_count=0は前後48時間以内なら対象",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 0, NextReviewDate: &within47h},
			want:  true,
		},
		{
			name:  "正常系: review_count=0でも48時間を超えれば対象外",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 0, NextReviewDate: &beyond49h},
			want:  false,
		},
		{
			name:  "正常系: review_countが1以上なら許容幅は適用しない",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 1, NextReviewDate: &within47h},
			want:  false,
		},
		{
			name:  "正常系: 次回日が無ければ対象外",
			video: &model.Video{Status: model.StatusLearning, ReviewCount: 1, NextReviewDate: nil},
			want:  false,
		},
		{
			name:  "正常系: 完了済みは対象外",
			video: &model.Video{Status: model.StatusCompleted, ReviewCount: 5, NextReviewDate: &yesterday},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDue(tt.video, now))
		})
	}
}

// --- Test GeneratePreview ---
func Test_schedulerService_GeneratePreview(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBScheduler()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)
	firstPlay := now.AddDate(0, 0, -8)

	collA := &model.Collection{CollectionID: uuid.New(), Name: "A", IsActive: true}
	collB := &model.Collection{CollectionID: uuid.New(), Name: "B", IsActive: true}

	newA := []*model.Video{
		{VideoID: uuid.New(), CollectionID: collA.CollectionID, Name: "a0", Status: model.StatusNew},
		{VideoID: uuid.New(), CollectionID: collA.CollectionID, Name: "a1", Status: model.StatusNew},
	}
	newB := []*model.Video{
		{VideoID: uuid.New(), CollectionID: collB.CollectionID, Name: "b0", Status: model.StatusNew},
	}
	// 復習対象: review_count=3 以降は映像モード推奨になる
	dueVideo := &model.Video{
		VideoID: uuid.New(), CollectionID: collA.CollectionID, Name: "due",
		Status: model.StatusLearning, ReviewCount: 3,
		FirstPlayDate: &firstPlay, NextReviewDate: &yesterday,
	}
	notDue := &model.Video{
		VideoID: uuid.New(), CollectionID: collB.CollectionID, Name: "later",
		Status: model.StatusLearning, ReviewCount: 1,
		FirstPlayDate: &firstPlay,
	}

	mockCollRepo := new(mocks.CollectionRepository)
	mockVidRepo := new(mocks.VideoRepository)
	mockPlRepo := new(mocks.PlaylistRepository)
	scheduler := newTestScheduler(db, mockCollRepo, mockVidRepo, mockPlRepo, now)

	mockCollRepo.On("FindActive", ctx, db).Return([]*model.Collection{collA, collB}, nil)
	mockVidRepo.On("FindNewByCollection", ctx, db, collA.CollectionID).Return(newA, nil).Once()
	mockVidRepo.On("FindNewByCollection", ctx, db, collB.CollectionID).Return(newB, nil).Once()
	mockVidRepo.On("FindByCollection", ctx, db, collA.CollectionID).Return([]*model.Video{dueVideo}, nil).Once()
	mockVidRepo.On("FindByCollection", ctx, db, collB.CollectionID).Return([]*model.Video{notDue}, nil).Once()

	preview, err := scheduler.GeneratePreview(ctx, false)

	require.NoError(t, err)
	require.NotNil(t, preview)
	assert.Len(t, preview.NewItems, 3)
	assert.Equal(t, 4, preview.TotalCount)
	// 新規はコレクション横断の巡回順
	assert.Equal(t, newA[0].VideoID, preview.NewItems[0].VideoID)
	assert.Equal(t, newB[0].VideoID, preview.NewItems[1].VideoID)
	assert.Equal(t, newA[1].VideoID, preview.NewItems[2].VideoID)
	assert.Equal(t, 1, preview.NewItems[0].ReviewNumber)

	require.Len(t, preview.ReviewItems, 1)
	item := preview.ReviewItems[0]
	assert.Equal(t, dueVideo.VideoID, item.VideoID)
	assert.Equal(t, 4, item.ReviewNumber) // review_count + 1
	assert.Equal(t, 8, item.DaysSinceFirstPlay)
	assert.True(t, item.RecommendVideoMode)
	mockCollRepo.AssertExpectations(t)
	mockVidRepo.AssertExpectations(t)
}

// --- Test MaterializePlaylist ---
func Test_schedulerService_MaterializePlaylist(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBScheduler()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

	coll := &model.Collection{CollectionID: uuid.New(), Name: "A", IsActive: true}
	newVideos := []*model.Video{
		{VideoID: uuid.New(), CollectionID: coll.CollectionID, Name: "a0", Status: model.StatusNew},
		{VideoID: uuid.New(), CollectionID: coll.CollectionID, Name: "a1", Status: model.StatusNew},
	}
	existing := &model.DailyPlaylist{
		PlaylistID:   uuid.New(),
		PlaylistDate: today,
		PlaylistType: model.PlaylistTypeNew,
	}

	matchNormal := false

	tests := []struct {
		name         string
		playlistType model.PlaylistType
		forceRebuild bool
		setupMock    func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository)
		wantErrCode  string
		verify       func(t *testing.T, got *model.DailyPlaylist)
	}{
		{
			name:         "正常系: 当日の未完了new型があれば再利用する",
			playlistType: model.PlaylistTypeNew,
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {
				mp.On("FindUnfinishedByDay", ctx, db, today, model.PlaylistTypeNew, &matchNormal).
					Return(existing, nil).Once()
			},
			verify: func(t *testing.T, got *model.DailyPlaylist) {
				assert.Equal(t, existing.PlaylistID, got.PlaylistID)
			},
		},
		{
			name:         "正常系: 未完了が無ければ新規作成する",
			playlistType: model.PlaylistTypeNew,
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {
				mp.On("FindUnfinishedByDay", ctx, db, today, model.PlaylistTypeNew, &matchNormal).
					Return(nil, model.ErrNotFound).Once()
				mc.On("FindActive", ctx, db).Return([]*model.Collection{coll}, nil).Once()
				mv.On("FindNewByCollection", ctx, db, coll.CollectionID).Return(newVideos, nil).Once()
				mp.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.MatchedBy(func(p *model.DailyPlaylist) bool {
					return p.PlaylistType == model.PlaylistTypeNew && len(p.Items) == 2
				})).Return(nil).Once()
			},
			verify: func(t *testing.T, got *model.DailyPlaylist) {
				require.Len(t, got.Items, 2)
				assert.Equal(t, today, got.PlaylistDate)
				assert.Equal(t, 0, got.Items[0].Position)
				assert.Equal(t, got.PlaylistID, got.Items[0].PlaylistID)
			},
		},
		{
			name:         "正常系: forceRebuildは再利用検索を飛ばす",
			playlistType: model.PlaylistTypeNew,
			forceRebuild: true,
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {
				mc.On("FindActive", ctx, db).Return([]*model.Collection{coll}, nil).Once()
				mv.On("FindNewByCollection", ctx, db, coll.CollectionID).Return(newVideos, nil).Once()
				mp.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.DailyPlaylist")).
					Return(nil).Once()
			},
			verify: func(t *testing.T, got *model.DailyPlaylist) {
				assert.Len(t, got.Items, 2)
			},
		},
		{
			name:         "正常系: 出題対象ゼロでも空のプレイリストを作成して返す",
			playlistType: model.PlaylistTypeReview,
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {
				mc.On("FindActive", ctx, db).Return([]*model.Collection{}, nil).Once()
				mp.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.DailyPlaylist")).
					Return(nil).Once()
			},
			verify: func(t *testing.T, got *model.DailyPlaylist) {
				assert.Empty(t, got.Items)
				assert.Equal(t, model.PlaylistTypeReview, got.PlaylistType)
			},
		},
		{
			name:         "異常系: 不正なプレイリスト種別",
			playlistType: model.PlaylistType("bogus"),
			setupMock:    func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {},
			wantErrCode:  "INVALID_INPUT",
		},
		{
			name:         "異常系: 作成時のDBエラー",
			playlistType: model.PlaylistTypeNew,
			forceRebuild: true,
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository, mp *mocks.PlaylistRepository) {
				mc.On("FindActive", ctx, db).Return([]*model.Collection{coll}, nil).Once()
				mv.On("FindNewByCollection", ctx, db, coll.CollectionID).Return(newVideos, nil).Once()
				mp.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.DailyPlaylist")).
					Return(errors.New("db error")).Once()
			},
			wantErrCode: "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCollRepo := new(mocks.CollectionRepository)
			mockVidRepo := new(mocks.VideoRepository)
			mockPlRepo := new(mocks.PlaylistRepository)
			scheduler := newTestScheduler(db, mockCollRepo, mockVidRepo, mockPlRepo, now)
			tt.setupMock(mockCollRepo, mockVidRepo, mockPlRepo)

			got, err := scheduler.MaterializePlaylist(ctx, tt.playlistType, false, tt.forceRebuild)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.wantErrCode, appErr.Detail.Code)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				tt.verify(t, got)
			}
			mockCollRepo.AssertExpectations(t)
			mockVidRepo.AssertExpectations(t)
			mockPlRepo.AssertExpectations(t)
		})
	}
}

// --- Test RecordCompletion ---
func Test_schedulerService_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBScheduler()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)

	collectionID := uuid.New()
	videoID := uuid.New()
	firstPlay := now.AddDate(0, 0, -4)

	tests := []struct {
		name      string
		setupMock func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository)
		wantErr   error
	}{
		{
			name: "正常系: 初回再生は4日後0時の次回日とlearning遷移",
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository) {
				video := &model.Video{VideoID: videoID, CollectionID: collectionID, Status: model.StatusNew}
				mv.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).Return(video, nil).Once()
				mv.On("UpdateFields", ctx, mock.AnythingOfType("*gorm.DB"), videoID, mock.MatchedBy(func(u map[string]interface{}) bool {
					next, ok := u["next_review_date"].(time.Time)
					if !ok {
						return false
					}
					wantNext := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
					return u["review_count"] == 1 &&
						u["status"] == model.StatusLearning &&
						next.Equal(wantNext)
				})).Return(nil).Once()
			},
		},
		{
			name: "正常系: 2回目のパスは8日後の次回日",
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository) {
				video := &model.Video{
					VideoID: videoID, CollectionID: collectionID,
					Status: model.StatusLearning, ReviewCount: 1, FirstPlayDate: &firstPlay,
				}
				mv.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).Return(video, nil).Once()
				mv.On("UpdateFields", ctx, mock.AnythingOfType("*gorm.DB"), videoID, mock.MatchedBy(func(u map[string]interface{}) bool {
					next, ok := u["next_review_date"].(time.Time)
					return ok && u["review_count"] == 2 && next.Equal(now.AddDate(0, 0, 8))
				})).Return(nil).Once()
			},
		},
		{
			name: "正常系: 5回目のパスで完了しコレクションの完了数を加算",
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository) {
				video := &model.Video{
					VideoID: videoID, CollectionID: collectionID,
					Status: model.StatusLearning, ReviewCount: 4, FirstPlayDate: &firstPlay,
				}
				mv.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).Return(video, nil).Once()
				mv.On("UpdateFields", ctx, mock.AnythingOfType("*gorm.DB"), videoID, mock.MatchedBy(func(u map[string]interface{}) bool {
					return u["review_count"] == 5 &&
						u["status"] == model.StatusCompleted &&
						u["next_review_date"] == nil
				})).Return(nil).Once()
				mc.On("AddCounters", ctx, mock.AnythingOfType("*gorm.DB"), collectionID, 0, 1).
					Return(nil).Once()
			},
		},
		{
			name: "異常系: 動画が存在しない",
			setupMock: func(mc *mocks.CollectionRepository, mv *mocks.VideoRepository) {
				mv.On("FindByID", ctx, mock.AnythingOfType("*gorm.DB"), videoID).
					Return(nil, model.ErrNotFound).Once()
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCollRepo := new(mocks.CollectionRepository)
			mockVidRepo := new(mocks.VideoRepository)
			mockPlRepo := new(mocks.PlaylistRepository)
			scheduler := newTestScheduler(db, mockCollRepo, mockVidRepo, mockPlRepo, now)
			tt.setupMock(mockCollRepo, mockVidRepo)

			err := scheduler.RecordCompletion(ctx, videoID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			mockCollRepo.AssertExpectations(t)
			mockVidRepo.AssertExpectations(t)
		})
	}
}
