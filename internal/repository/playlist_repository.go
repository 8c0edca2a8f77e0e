// internal/repository/playlist_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlaylistRepository interface {
	// Create はプレイリストとそのアイテムをまとめて保存します
	Create(ctx context.Context, tx *gorm.DB, playlist *model.DailyPlaylist) error
	FindByID(ctx context.Context, db *gorm.DB, playlistID uuid.UUID) (*model.DailyPlaylist, error)
	// FindUnfinishedByDay は (日付, 種別, 未完了) をキーにした索引検索です。
	// matchExtra が non-nil の場合は is_extra_session まで一致させます。
	FindUnfinishedByDay(ctx context.Context, db *gorm.DB, day time.Time, playlistType model.PlaylistType, matchExtra *bool) (*model.DailyPlaylist, error)
	// ExistsCompletedByDay は (日付, 種別) の完了済みプレイリストの有無を返します
	ExistsCompletedByDay(ctx context.Context, db *gorm.DB, day time.Time, playlistType model.PlaylistType) (bool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, playlistID uuid.UUID, updates map[string]interface{}) error
	// ListHistory は作成日の新しい順に履歴を返します
	ListHistory(ctx context.Context, db *gorm.DB, limit int) ([]*model.DailyPlaylist, error)
}

type gormPlaylistRepository struct{}

func NewGormPlaylistRepository() PlaylistRepository {
	return &gormPlaylistRepository{}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, tx *gorm.DB, playlist *model.DailyPlaylist) error {
	// Itemsは関連として同時にINSERTされる
	return tx.WithContext(ctx).Create(playlist).Error
}

func (r *gormPlaylistRepository) FindByID(ctx context.Context, db *gorm.DB, playlistID uuid.UUID) (*model.DailyPlaylist, error) {
	var playlist model.DailyPlaylist
	result := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_items.position ASC")
		}).
		Where("playlist_id = ?", playlistID).
		First(&playlist)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	if !playlist.PlaylistType.Valid() {
		middleware.GetLogger(ctx).Warn("Playlist record has invalid type",
			"playlist_id", playlist.PlaylistID, "playlist_type", string(playlist.PlaylistType))
		return nil, model.ErrNotFound
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) FindUnfinishedByDay(ctx context.Context, db *gorm.DB, day time.Time, playlistType model.PlaylistType, matchExtra *bool) (*model.DailyPlaylist, error) {
	query := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_items.position ASC")
		}).
		Where("playlist_date = ? AND playlist_type = ? AND is_completed = ?", day, playlistType, false)
	if matchExtra != nil {
		query = query.Where("is_extra_session = ?", *matchExtra)
	}

	var playlist model.DailyPlaylist
	result := query.Order("created_at DESC").First(&playlist)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) ExistsCompletedByDay(ctx context.Context, db *gorm.DB, day time.Time, playlistType model.PlaylistType) (bool, error) {
	var count int64
	result := db.WithContext(ctx).Model(&model.DailyPlaylist{}).
		Where("playlist_date = ? AND playlist_type = ? AND is_completed = ?", day, playlistType, true).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *gormPlaylistRepository) UpdateFields(ctx context.Context, tx *gorm.DB, playlistID uuid.UUID, updates map[string]interface{}) error {
	result := tx.WithContext(ctx).Model(&model.DailyPlaylist{}).Where("playlist_id = ?", playlistID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *gormPlaylistRepository) ListHistory(ctx context.Context, db *gorm.DB, limit int) ([]*model.DailyPlaylist, error) {
	var playlists []*model.DailyPlaylist
	query := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_items.position ASC")
		}).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&playlists)
	if result.Error != nil {
		return nil, result.Error
	}

	// 破損レコードは履歴からスキップする
	valid := playlists[:0]
	for _, p := range playlists {
		if !p.PlaylistType.Valid() {
			middleware.GetLogger(ctx).Warn("Skipping playlist record with invalid type",
				"playlist_id", p.PlaylistID, "playlist_type", string(p.PlaylistType))
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}
