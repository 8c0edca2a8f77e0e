// internal/model/collection.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Collection はエピソードのコレクション (シリーズ) を表します
type Collection struct {
	CollectionID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"collection_id"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `json:"description,omitempty"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"` // スケジューリング対象かどうか
	TotalVideos     int       `gorm:"not null;default:0" json:"total_videos"`
	CompletedVideos int       `gorm:"not null;default:0" json:"completed_videos"`
	Color           string    `json:"color"`
	CreatedAt       time.Time `json:"date_created"`
	UpdatedAt       time.Time `json:"-"`
}

func (Collection) TableName() string {
	return "collections"
}

// コレクション作成リクエストDTO
type PostCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

// コレクション更新リクエストDTO
type PutCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}
