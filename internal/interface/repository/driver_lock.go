package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

// RedisDriverLocker serialises open-shift attempts of a driver across instances
type RedisDriverLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisDriverLocker creates a new locker
func NewRedisDriverLocker(locker *redislock.Client, logger logger.Logger) repository.DriverLocker {
	return &RedisDriverLocker{locker: locker, ttl: 10 * time.Second, logger: logger}
}

func driverLockKey(driverID uint) string {
	return fmt.Sprintf("lock:shift:driver:%d", driverID)
}

// LockDriver waits briefly for the driver's lock; ErrLockBusy when it stays held
func (l *RedisDriverLocker) LockDriver(ctx context.Context, driverID uint) (func(), error) {
	lock, err := l.locker.Obtain(ctx, driverLockKey(driverID), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, entity.ErrLockBusy
	}
	if err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release driver lock", "driverID", driverID, "error", err)
		}
	}, nil
}
