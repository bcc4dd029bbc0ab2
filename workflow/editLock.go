package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/sirupsen/logrus"
)

const editLockTTL = 30 * time.Second

var (
	ErrEditLocked      = errors.New("another save of this record is in progress")
	ErrLockUnavailable = errors.New("edit lock service is not available")
)

func editLockKey(entity string, id int) string {
	return fmt.Sprintf("lock:edit:%s:%d", entity, id)
}

// AcquireEditLock serializes commits of the same parent record across instances.
// New records (id 0) need no lock. Without redis the commit goes ahead unlocked unless
// STRICT_EDIT_LOCK is set. The returned release func is always safe to call.
func AcquireEditLock(ctx context.Context, entity string, id int) (func(), error) {
	noop := func() {}
	if id == 0 {
		return noop, nil
	}

	logger := config.GetLogger()
	fields := logrus.Fields{
		"field":  "AcquireEditLock",
		"entity": entity,
		"id":     id,
	}

	locker := config.GetRedisLock()
	if locker == nil {
		if config.StrictEditLock() {
			return noop, ErrLockUnavailable
		}
		logger.WithFields(fields).Warn("redis lock not ready; proceeding without edit lock")
		return noop, nil
	}

	lock, err := locker.Obtain(ctx, editLockKey(entity, id), editLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return noop, ErrEditLocked
	}
	if err != nil {
		if config.StrictEditLock() {
			return noop, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
		}
		logger.WithFields(fields).Warn("error obtaining edit lock; proceeding without edit lock: " + err.Error())
		return noop, nil
	}

	return func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			logger.WithFields(fields).Warn("failed to release edit lock: " + releaseErr.Error())
		}
	}, nil
}
