// internal/model/stats.go
package model

// LearningStats は表示用の集計値です。すべて他コンポーネントの状態から導出されます
type LearningStats struct {
	TotalVideos        int     `json:"total_videos"`
	CompletedVideos    int     `json:"completed_videos"`
	TodayNewCount      int     `json:"today_new_count"`
	TodayReviewCount   int     `json:"today_review_count"`
	OverallProgress    int     `json:"overall_progress"` // パーセント (0-100)
	ActiveCollections  int     `json:"active_collections"`
	CanAddExtra        bool    `json:"can_add_extra"` // 本日の通常ノルマ消化済みで未学習が残っている
	TotalReviewHours   float64 `json:"total_review_hours"`
	PendingReviewCount int     `json:"pending_review_count"`
}
