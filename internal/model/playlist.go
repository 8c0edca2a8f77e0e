// internal/model/playlist.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaylistType はプレイリストの種別 (新規学習か復習か) を表します
type PlaylistType string

const (
	PlaylistTypeNew    PlaylistType = "new"
	PlaylistTypeReview PlaylistType = "review"
)

func (t PlaylistType) Valid() bool {
	return t == PlaylistTypeNew || t == PlaylistTypeReview
}

// PlaylistItem はプレイリスト内の1エピソードを表します。
// DailyPlaylistに入った後は不変です。
type PlaylistItem struct {
	ItemID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"-"`
	PlaylistID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	VideoID            uuid.UUID    `gorm:"type:uuid;not null" json:"video_id"`
	Position           int          `gorm:"not null" json:"position"` // 挿入順 = 再生順
	ReviewType         PlaylistType `gorm:"not null" json:"review_type"`
	ReviewNumber       int          `gorm:"not null" json:"review_number"` // 1..5 何回目のパスか
	DaysSinceFirstPlay int          `json:"days_since_first_play"`
	RecommendVideoMode bool         `json:"recommend_video_mode"` // 後半の復習は映像での視聴を推奨
}

func (PlaylistItem) TableName() string {
	return "playlist_items"
}

// DailyPlaylist は1セッション分の再生リストです。
// 完了後も履歴として残り、削除されることはありません。
type DailyPlaylist struct {
	PlaylistID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"playlist_id"`
	PlaylistDate    time.Time      `gorm:"not null;index:idx_playlist_day_type" json:"playlist_date"` // その日の0時に切り詰めた日付
	PlaylistType    PlaylistType   `gorm:"not null;index:idx_playlist_day_type" json:"playlist_type"`
	IsCompleted     bool           `gorm:"not null;default:false;index:idx_playlist_day_type" json:"is_completed"`
	IsExtraSession  bool           `gorm:"not null;default:false" json:"is_extra_session"`
	LastPlayedIndex int            `gorm:"not null;default:0" json:"last_played_index"` // 次に再生するインデックス (カーソル)
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"-"`
	Items           []PlaylistItem `gorm:"foreignKey:PlaylistID;references:PlaylistID" json:"items"`
}

func (DailyPlaylist) TableName() string {
	return "daily_playlists"
}

// PlaylistPreview は本日のタスクのプレビューです。
// 呼び出し側によってフィールドの有無が変わらないよう、常に全フィールドを持ちます。
type PlaylistPreview struct {
	NewItems       []PlaylistItem `json:"new_items"`
	ReviewItems    []PlaylistItem `json:"review_items"`
	TotalCount     int            `json:"total_count"`
	IsExtraSession bool           `json:"is_extra_session"`
}

// プレイリスト生成リクエストDTO
type MaterializePlaylistRequest struct {
	PlaylistType   string `json:"playlist_type" validate:"required,oneof=new review"`
	IsExtraSession bool   `json:"is_extra_session"`
	ForceRebuild   bool   `json:"force_rebuild"`
}

// 再生カーソル更新リクエストDTO
type AdvanceCursorRequest struct {
	LastPlayedIndex *int `json:"last_played_index" validate:"required,gte=0"`
}

// プレイリスト完了リクエストDTO
type CompletePlaylistRequest struct {
	ChainToReview bool `json:"chain_to_review"`
}

// CompletePlaylistResponse は完了処理の結果です。
// 連鎖が要求された場合のみ NextPlaylist が設定されます。
type CompletePlaylistResponse struct {
	Playlist     *DailyPlaylist `json:"playlist"`
	NextPlaylist *DailyPlaylist `json:"next_playlist,omitempty"`
}
