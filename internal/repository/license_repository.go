// internal/repository/license_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LicenseRepository interface {
	// GetOrCreate は唯一のライセンスレコードを取得します。存在しない場合は
	// 初回利用日を now として新規作成します
	GetOrCreate(ctx context.Context, db *gorm.DB, now time.Time) (*model.LicenseRecord, error)
	Update(ctx context.Context, db *gorm.DB, record *model.LicenseRecord) error
}

type gormLicenseRepository struct{}

func NewGormLicenseRepository() LicenseRepository {
	return &gormLicenseRepository{}
}

func (r *gormLicenseRepository) GetOrCreate(ctx context.Context, db *gorm.DB, now time.Time) (*model.LicenseRecord, error) {
	var record model.LicenseRecord
	err := db.WithContext(ctx).Order("first_use_date ASC").First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	record = model.LicenseRecord{
		LicenseID:    uuid.New(),
		FirstUseDate: now,
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormLicenseRepository) Update(ctx context.Context, db *gorm.DB, record *model.LicenseRecord) error {
	return db.WithContext(ctx).Save(record).Error
}
