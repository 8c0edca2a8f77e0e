// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "ReplayKeep"
	AppVersion = "1.0.0"
)

// 復習スケジュールの定数 (忘却曲線ポリシー)
var (
	// ReviewIntervals はN回目の復習までの日数です (初回再生日基準で4/8/15/30日後)。
	// 5回目のパスで完了となり、以降の間隔はありません。
	ReviewIntervals = [4]int{4, 8, 15, 30}
)

const (
	MaxReviewPasses   = 5   // 完了までの復習パス数
	MaxNewPerDay      = 4   // 1日の新規学習数
	ExtraSessionBonus = 2   // 加餐セッションで追加される新規学習数
	MaxReviewPerDay   = 600 // 1日の最大復習数 (実質的に無制限)

	// 初回学習直後のアイテムに適用する日付境界の許容幅
	FreshReviewGraceWindow = 48 * time.Hour

	// 復習後半 (この回数以降) は映像での視聴を推奨する
	RecommendVideoFromReviewCount = 3
)

// 再生トラッカーの定数
const (
	CheckpointHistoryLimit  = 100                     // チェックポイント保持件数 (最終書き込み順で追い出し)
	CheckpointWriteInterval = 5 * time.Second         // チェックポイント書き込みの最小間隔
	ResumeEdgeWindow        = 10 * time.Second        // 先頭/末尾からこの範囲内のチェックポイントは無視
	StallTimeout            = 30 * time.Second        // 読み込み開始から再生開始までの失速タイムアウト
	MaxLoadRetries          = 3                       // 欠落以外の読み込みエラーの手動リトライ上限
	MissingSkipDelay        = 1200 * time.Millisecond // 欠落時に自動で次へ進むまでの待ち
)

// ライセンス/試用の定数
const (
	TrialPeriod     = 30 * 24 * time.Hour  // 試用期間
	LicenseValidity = 365 * 24 * time.Hour // 認証コードの有効期間
)

// デフォルト設定値
const (
	DefaultServerPort  = ":8080"
	DefaultLogLevel    = "info"
	DefaultDatabaseURL = "file:replay_keep.db"
	DefaultMediaDir    = "media"
)
