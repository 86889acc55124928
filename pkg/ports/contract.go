package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPlanStoreContract runs a suite of tests to verify that a PlanStore implementation
// adheres to the defined interface contract.
func RunPlanStoreContract(t *testing.T, store PlanStore) {
	ctx := context.Background()
	agentID := "contract-agent-" + time.Now().Format("20060102150405")

	newRecord := func(id string) *domain.PlanRecord {
		return &domain.PlanRecord{
			PlanID:  "plan-" + id,
			AgentID: id,
			Policy:  domain.PolicyGreedy,
			Steps: []domain.PlanStep{
				{Name: "buy", Params: map[string]any{"good": "ore"}},
				{Name: "travel", Params: map[string]any{"to": "port"}},
				{Name: "sell", Params: map[string]any{"good": "ore"}},
			},
			Position:     1,
			Gain:         3,
			Cost:         -3,
			WorldVersion: 7,
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		record := newRecord(agentID)

		err := store.Save(ctx, agentID, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.PlanID, loaded.PlanID)
		assert.Equal(t, record.Position, loaded.Position)
		assert.Equal(t, record.WorldVersion, loaded.WorldVersion)
		assert.InDelta(t, record.Gain, loaded.Gain, 1e-9)
		require.Len(t, loaded.Steps, 3)
		assert.Equal(t, "travel", loaded.Steps[1].Name)
		// JSON backends decode params as generic values; compare by string form.
		assert.EqualValues(t, "port", loaded.Steps[1].Params["to"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+agentID)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		record := newRecord(agentID)
		record.Position = 3
		require.NoError(t, store.Save(ctx, agentID, record))

		loaded, err := store.Load(ctx, agentID)
		require.NoError(t, err)
		assert.Equal(t, 3, loaded.Position)
		assert.Empty(t, loaded.Remaining())
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, agentID, newRecord(agentID))
		require.NoError(t, err)

		err = store.Delete(ctx, agentID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, agentID)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound, "Load after Delete should return ErrPlanNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := agentID + "-1"
		id2 := agentID + "-2"
		_ = store.Save(ctx, id1, newRecord(id1))
		_ = store.Save(ctx, id2, newRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		agents, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, agents, id1)
		assert.Contains(t, agents, id2)
	})
}
