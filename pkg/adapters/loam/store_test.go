package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/adapters/loam"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

func newStore(t *testing.T) (*loam.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := loam.New(dir)
	require.NoError(t, err)
	return store, dir
}

func TestLoamStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunPlanStoreContract(t, store)
}

func TestLoamStore_DocumentOnDisk(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	rec := &domain.PlanRecord{
		PlanID:  "p1",
		AgentID: "m1",
		Steps:   []domain.PlanStep{{Name: "travel", Params: map[string]any{"to": "b"}}},
	}
	require.NoError(t, store.Save(ctx, "m1", rec))

	data, err := os.ReadFile(filepath.Join(dir, "m1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"plan_id": "p1"`)

	// a second handle on the same vault sees the record
	reopened, err := loam.New(dir)
	require.NoError(t, err)
	agents, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, agents)

	got, err := reopened.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "travel", got.Steps[0].Name)
}

func TestLoamStore_DeleteMissing(t *testing.T) {
	store, _ := newStore(t)
	assert.NoError(t, store.Delete(context.Background(), "ghost"))
}

func TestLoamStore_InvalidID(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", &domain.PlanRecord{}))
	assert.Error(t, store.Save(ctx, "fleet/m1", &domain.PlanRecord{}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}
