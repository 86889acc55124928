package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/persistence/middleware"
	"github.com/aretw0/lookahead/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.PlanStore, active []byte, fallback ...[]byte) ports.PlanStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func sampleRecord() *domain.PlanRecord {
	return &domain.PlanRecord{
		PlanID:  "p1",
		AgentID: "m1",
		Policy:  domain.PolicyGreedy,
		Steps: []domain.PlanStep{
			{Name: "buy", Params: map[string]any{"good": "ore"}},
			{Name: "travel", Params: map[string]any{"to": "b"}},
		},
		Position:     1,
		Gain:         3,
		Cost:         -3,
		WorldVersion: 7,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunPlanStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))

	require.NoError(t, store.Save(ctx, "m1", sampleRecord()))

	sealed, err := underlying.Load(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, sealed.Steps, 1)
	assert.Equal(t, middleware.EnvelopeStep, sealed.Steps[0].Name)
	assert.Empty(t, sealed.Policy, "policy is sealed")
	assert.Zero(t, sealed.Gain, "gain is sealed")
	assert.Equal(t, 1, sealed.Position, "cursor stays readable")
	assert.Equal(t, uint64(7), sealed.WorldVersion)

	loaded, err := store.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := encrypted(t, underlying, oldKey)
	require.NoError(t, oldStore.Save(ctx, "m1", sampleRecord()))

	newStore := encrypted(t, underlying, newKey, oldKey)
	loaded, err := newStore.Load(ctx, "m1")
	require.NoError(t, err, "fallback key opens old records")
	assert.Equal(t, "p1", loaded.PlanID)

	loaded.Position = 2
	require.NoError(t, newStore.Save(ctx, "m1", loaded))

	_, err = oldStore.Load(ctx, "m1")
	assert.Error(t, err, "old key cannot open records sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "m1", sampleRecord()))

	_, err := encrypted(t, underlying, generateKey(t)).Load(ctx, "m1")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}
