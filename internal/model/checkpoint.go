// internal/model/checkpoint.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaybackCheckpoint は1エピソードの再生再開位置です。
// プレイリストとは独立に video_id をキーとして保持されます。
type PlaybackCheckpoint struct {
	VideoID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"video_id"`
	Title             string    `gorm:"not null" json:"title"`
	LastPlayedSeconds float64   `gorm:"not null" json:"last_played_seconds"`
	LastPlayedAt      time.Time `gorm:"not null;index" json:"last_played_at"` // 最終書き込み順の追い出しに使用
}

func (PlaybackCheckpoint) TableName() string {
	return "playback_checkpoints"
}

// PlayStats はアプリ全体の累計再生秒数です。1行だけ存在します。
// (プロセス全体のグローバル変数ではなく、永続化を注入された集計行として持つ)
type PlayStats struct {
	ID                 int       `gorm:"primaryKey" json:"-"`
	TotalPlayedSeconds int64     `gorm:"not null;default:0" json:"total_played_seconds"`
	UpdatedAt          time.Time `json:"-"`
}

func (PlayStats) TableName() string {
	return "play_stats"
}

// MediaEventType は再生サーフェスから報告されるイベント種別です
type MediaEventType string

const (
	EventLoadStarted     MediaEventType = "load_started"     // メディアの読み込み開始 (失速タイマー起動)
	EventPlaybackStarted MediaEventType = "playback_started" // 再生開始 (失速タイマー解除)
	EventEnded           MediaEventType = "ended"            // アイテムの自然終了
	EventMissing         MediaEventType = "missing"          // ファイル欠落
	EventLoadError       MediaEventType = "load_error"       // 欠落以外の読み込み失敗
	EventClosed          MediaEventType = "closed"           // サーフェスを閉じた (タイマー破棄)
)

// PlaybackAction は tracker がサーフェスに指示する次の動作です
type PlaybackAction string

const (
	ActionNone      PlaybackAction = "none"
	ActionAutoSkip  PlaybackAction = "auto_skip"   // 欠落: 短い待ちの後に自動で次へ
	ActionRetryWait PlaybackAction = "retry_wait"  // 再試行可能 (手動リトライ待ち)
	ActionGiveUp    PlaybackAction = "give_up"     // リトライ上限到達: 明示的なスキップが必要
)

// チェックポイント保存リクエストDTO
type SaveCheckpointRequest struct {
	Title   string   `json:"title" validate:"required"`
	Seconds *float64 `json:"seconds" validate:"required,gte=0"`
}

// ResumePointResponse は再開判定の結果です
type ResumePointResponse struct {
	VideoID      uuid.UUID `json:"video_id"`
	Seconds      float64   `json:"seconds"`
	ShouldResume bool      `json:"should_resume"`
}

// 再生イベント報告リクエストDTO
type MediaEventRequest struct {
	Event string `json:"event" validate:"required,oneof=load_started playback_started ended missing load_error closed"`
}

// PlaybackStateResponse は1エピソードの再生セッション状態です
type PlaybackStateResponse struct {
	VideoID     uuid.UUID      `json:"video_id"`
	Action      PlaybackAction `json:"action"`
	Stalled     bool           `json:"stalled"`
	RetryCount  int            `json:"retry_count"`
	SkipDelayMS int            `json:"skip_delay_ms,omitempty"`
}
