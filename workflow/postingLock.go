package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

const (
	payrollImportLockName = "payroll-import"
	payrollImportLockTTL  = 5 * time.Minute
	msgImportInProgress   = "Another payroll import is running, try again shortly"
)

// single process fallback when neither Redis nor MySQL is available (SQLite)
var localImportMu sync.Mutex

// AcquireAdvisoryLock takes a MySQL named lock.
// NOTE: GET_LOCK is connection-scoped, so the caller must keep using the same connection until release.
func AcquireAdvisoryLock(conn *gorm.DB, lockName string, timeoutSeconds int) error {
	var ok int
	if err := conn.Raw("SELECT GET_LOCK(?, ?)", lockName, timeoutSeconds).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire lock %s", lockName)
	}
	return nil
}

func ReleaseAdvisoryLock(conn *gorm.DB, lockName string) {
	var _ok int
	_ = conn.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// withPayrollImportLock runs fn while holding the process-wide import lock.
// Redis is preferred; MySQL falls back to GET_LOCK on a pinned connection which fn must use.
func withPayrollImportLock(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error {
	logger := config.GetLogger()
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:"+payrollImportLockName, payrollImportLockTTL, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(250*time.Millisecond), 40),
		})
		if errors.Is(err, redislock.ErrNotObtained) {
			return utils.NewValidationError("file", msgImportInProgress)
		}
		if err != nil {
			return err
		}
		defer func() {
			if releaseErr := lock.Release(ctx); releaseErr != nil {
				logger.WithField("field", "withPayrollImportLock").Warn("failed to release redis lock: " + releaseErr.Error())
			}
		}()
		return fn(db)
	}

	if db.Dialector.Name() == "mysql" {
		return db.Connection(func(conn *gorm.DB) error {
			if err := AcquireAdvisoryLock(conn, payrollImportLockName, 30); err != nil {
				return utils.NewValidationError("file", msgImportInProgress)
			}
			defer ReleaseAdvisoryLock(conn, payrollImportLockName)
			return fn(conn)
		})
	}

	localImportMu.Lock()
	defer localImportMu.Unlock()
	return fn(db)
}
