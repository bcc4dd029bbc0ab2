package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inventory_backend/workflow"
)

// These run without a redis connection, which is how a single instance is deployed.
func TestAcquireEditLockWithoutRedis(t *testing.T) {
	ctx := context.Background()

	t.Setenv("STRICT_EDIT_LOCK", "")
	release, err := workflow.AcquireEditLock(ctx, "equipment", 5)
	if err != nil {
		t.Fatalf("best effort lock err = %v, want nil", err)
	}
	release()

	t.Setenv("STRICT_EDIT_LOCK", "true")
	release, err = workflow.AcquireEditLock(ctx, "equipment", 5)
	if !errors.Is(err, workflow.ErrLockUnavailable) {
		t.Fatalf("strict lock err = %v, want ErrLockUnavailable", err)
	}
	release()

	// new records are never locked
	release, err = workflow.AcquireEditLock(ctx, "equipment", 0)
	if err != nil {
		t.Fatalf("id 0 err = %v, want nil", err)
	}
	release()
}
