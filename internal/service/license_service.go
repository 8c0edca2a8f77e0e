// internal/service/license_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"go_5_replay_keep/internal/config"
	"go_5_replay_keep/internal/middleware"
	"go_5_replay_keep/internal/model"
	"go_5_replay_keep/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 認証コードは19桁または28桁の数字列
var authCodePattern = regexp.MustCompile(`^\d{19}$|^\d{28}$`)

// LicenseService は試用期間とライセンス有効化を管理します。
// スケジューラの呼び出し可否を決めるゲートであり、出題ロジックからは独立しています。
type LicenseService interface {
	GetStatus(ctx context.Context) (*model.LicenseStatusResponse, error)
	// Activate は認証コードを検証して保存し、ゲート通過用のJWTを発行します
	Activate(ctx context.Context, code string) (*model.ActivateLicenseResponse, error)
	// Deactivate は有効化状態を取り消します
	Deactivate(ctx context.Context) error
	// Authorize は middleware.LicenseGate の実装です。
	// トークンが空でも試用期間内または有効化済みなら通過させます
	Authorize(ctx context.Context, bearerToken string) (uuid.UUID, error)
}

type licenseService struct {
	db      *gorm.DB
	licRepo repository.LicenseRepository
	cfg     *config.Config
	now     func() time.Time
}

func NewLicenseService(db *gorm.DB, licRepo repository.LicenseRepository, cfg *config.Config) LicenseService {
	return &licenseService{
		db:      db,
		licRepo: licRepo,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *licenseService) GetStatus(ctx context.Context) (*model.LicenseStatusResponse, error) {
	logger := middleware.GetLogger(ctx)

	record, err := s.licRepo.GetOrCreate(ctx, s.db, s.now())
	if err != nil {
		logger.Error("Failed to load license record", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンス状態の取得に失敗しました。", "", err)
	}

	now := s.now()
	trialEndsAt := record.FirstUseDate.Add(config.TrialPeriod)
	activated := s.isActivationValid(record, now)

	return &model.LicenseStatusResponse{
		TrialValid:    now.Before(trialEndsAt),
		TrialEndsAt:   trialEndsAt,
		Activated:     activated,
		ActivatedAt:   record.ActivatedAt,
		SchedulerOpen: now.Before(trialEndsAt) || activated,
	}, nil
}

func (s *licenseService) Activate(ctx context.Context, code string) (*model.ActivateLicenseResponse, error) {
	logger := middleware.GetLogger(ctx)

	if !authCodePattern.MatchString(code) {
		logger.Warn("Invalid license code format")
		return nil, model.NewAppError("INVALID_LICENSE_CODE", "認証コードの形式が正しくありません。", "code", model.ErrInvalidInput)
	}

	record, err := s.licRepo.GetOrCreate(ctx, s.db, s.now())
	if err != nil {
		logger.Error("Failed to load license record", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンスの有効化に失敗しました。", "", err)
	}

	now := s.now()
	record.Code = code
	record.ActivatedAt = &now
	if err := s.licRepo.Update(ctx, s.db, record); err != nil {
		logger.Error("Failed to save license activation", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンスの有効化に失敗しました。", "", err)
	}

	expiresAt := now.Add(config.LicenseValidity)
	claims := &model.LicenseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config.AppName,
			Subject:   record.LicenseID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		logger.Error("Failed to sign license token", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	logger.Info("License activated", "license_id", record.LicenseID, "expires_at", expiresAt)
	return &model.ActivateLicenseResponse{Token: signedToken, ExpiresAt: expiresAt}, nil
}

func (s *licenseService) Deactivate(ctx context.Context) error {
	logger := middleware.GetLogger(ctx)

	record, err := s.licRepo.GetOrCreate(ctx, s.db, s.now())
	if err != nil {
		logger.Error("Failed to load license record", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンスの取り消しに失敗しました。", "", err)
	}
	record.Code = ""
	record.ActivatedAt = nil
	if err := s.licRepo.Update(ctx, s.db, record); err != nil {
		logger.Error("Failed to clear license activation", "error", err)
		return model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンスの取り消しに失敗しました。", "", err)
	}
	logger.Info("License deactivated", "license_id", record.LicenseID)
	return nil
}

// isActivationValid は有効化から365日以内かを判定します
func (s *licenseService) isActivationValid(record *model.LicenseRecord, now time.Time) bool {
	if record.ActivatedAt == nil || record.Code == "" {
		return false
	}
	return now.Sub(*record.ActivatedAt) < config.LicenseValidity
}

func (s *licenseService) Authorize(ctx context.Context, bearerToken string) (uuid.UUID, error) {
	logger := middleware.GetLogger(ctx)

	if bearerToken != "" {
		return s.authorizeToken(logger, bearerToken)
	}

	// トークンが無い場合はローカルの試用/有効化状態で判定する
	record, err := s.licRepo.GetOrCreate(ctx, s.db, s.now())
	if err != nil {
		logger.Error("Failed to load license record for gate", "error", err)
		return uuid.Nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ライセンス状態の確認に失敗しました。", "", err)
	}
	now := s.now()
	if now.Before(record.FirstUseDate.Add(config.TrialPeriod)) || s.isActivationValid(record, now) {
		return record.LicenseID, nil
	}
	return uuid.Nil, model.NewAppError("LICENSE_REQUIRED", "試用期間が終了しています。認証コードを入力してください。", "", model.ErrLicenseRequired)
}

func (s *licenseService) authorizeToken(logger *slog.Logger, bearerToken string) (uuid.UUID, error) {
	claims := &model.LicenseClaims{}
	token, err := jwt.ParseWithClaims(bearerToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("License token validation failed", "error", err)
		return uuid.Nil, model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden)
	}
	licenseID, err := uuid.Parse(claims.Subject)
	if err != nil {
		logger.Warn("License token has invalid subject", "error", err)
		return uuid.Nil, model.NewAppError("INVALID_TOKEN", "トークンが無効です。", "", model.ErrForbidden)
	}
	return licenseID, nil
}
