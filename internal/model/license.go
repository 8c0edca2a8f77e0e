// internal/model/license.go
package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// licenseIDKeyType はコンテキストキーの衝突を避けるための専用型です
type licenseIDKeyType struct{}

// LicenseIDKey はコンテキストに格納するライセンスIDのキーです
var LicenseIDKey = licenseIDKeyType{}

// LicenseRecord はローカルに保存されるライセンス/試用状態です
type LicenseRecord struct {
	LicenseID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"license_id"`
	FirstUseDate time.Time  `gorm:"not null" json:"first_use_date"` // 初回起動日 (試用期間の起点)
	Code         string     `json:"-"`                              // 有効化済みの認証コード
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	UpdatedAt    time.Time  `json:"-"`
}

func (LicenseRecord) TableName() string {
	return "license_records"
}

// LicenseClaims はライセンス有効化時に発行するJWTのクレームです
type LicenseClaims struct {
	jwt.RegisteredClaims // 標準クレーム (iss, sub, exp など) を埋め込む
}

// ライセンス有効化リクエストDTO
type ActivateLicenseRequest struct {
	Code string `json:"code" validate:"required"`
}

// ActivateLicenseResponse は有効化成功時のレスポンスです
type ActivateLicenseResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LicenseStatusResponse はゲート判定の現況です
type LicenseStatusResponse struct {
	TrialValid    bool       `json:"trial_valid"`
	TrialEndsAt   time.Time  `json:"trial_ends_at"`
	Activated     bool       `json:"activated"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
	SchedulerOpen bool       `json:"scheduler_open"` // スケジューラを呼び出せる状態か
}
