// internal/model/video.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// VideoStatus は動画の学習状態を表します
type VideoStatus string

const (
	StatusNew       VideoStatus = "new"       // 未学習
	StatusLearning  VideoStatus = "learning"  // 復習サイクル中
	StatusCompleted VideoStatus = "completed" // 5回の復習完了
)

// Valid は永続化データから復元したステータスが既知の値かを判定します。
// 不正なレコードは読み込み時にスキップされます (カタログ全体の読み込み失敗にはしない)。
func (s VideoStatus) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusCompleted:
		return true
	}
	return false
}

// MediaType はメディアの種別を表します
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// Video はエピソード1本 (動画または音声) を表します
type Video struct {
	VideoID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"video_id"`
	CollectionID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"collection_id"`
	Name           string      `gorm:"not null" json:"name"`
	EpisodeNumber  int         `json:"episode_number"` // コレクション内の話数 (取り込み順)
	MediaType      MediaType   `gorm:"not null;default:video" json:"media_type"`
	Status         VideoStatus `gorm:"not null;default:new;index" json:"status"`
	ReviewCount    int         `gorm:"not null;default:0" json:"review_count"` // 0..5
	FirstPlayDate  *time.Time  `json:"first_play_date,omitempty"`              // 初回完了まで未設定
	NextReviewDate *time.Time  `gorm:"index" json:"next_review_date,omitempty"`
	DurationSec    float64     `json:"duration_sec,omitempty"`
	FileSize       int64       `json:"file_size,omitempty"`
	MimeType       string      `json:"mime_type,omitempty"`
	CreatedAt      time.Time   `json:"date_added"`
	UpdatedAt      time.Time   `json:"-"`

	// 関連 (Preload用)
	Collection *Collection `gorm:"foreignKey:CollectionID;references:CollectionID" json:"-"`
}

func (Video) TableName() string {
	return "videos"
}

// 動画メタデータ更新リクエストDTO
type PatchVideoRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	MediaType   *string  `json:"media_type,omitempty" validate:"omitempty,oneof=video audio"`
	DurationSec *float64 `json:"duration_sec,omitempty" validate:"omitempty,gte=0"`
}
