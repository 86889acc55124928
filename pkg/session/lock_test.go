package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("agent-%d", i)
		_ = mgr.Save(ctx, id, &domain.PlanRecord{PlanID: id})
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("memory leak: %d locks remaining after Delete", n)
	}
}
