package utils

import (
	"context"
	"errors"

	"github.com/wchd/budget_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

/* DB fetching */

// fetch model from db by primary key
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, id interface{}, associations ...string) (*T, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch model inside tx and hold a row lock until the tx ends
// (may return RecordNotFound)
func FetchModelForUpdate[T any](tx *gorm.DB, id interface{}) (*T, error) {
	var result T
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

// fetch all models ordered by primary key
func FetchAllModels[T any](ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]*T, error) {
	db := config.GetDB()
	var results []*T
	err := db.WithContext(ctx).Scopes(scopes...).Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// fetch model inside tx without locking
// (may return RecordNotFound)
func FetchModelTx[T any](tx *gorm.DB, id interface{}) (*T, error) {
	var result T
	err := tx.Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}
