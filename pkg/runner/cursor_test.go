package runner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/trade"
)

func TestCursor(t *testing.T) {
	var c runner.Cursor

	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrNoPlan, "nothing installed")
	assert.False(t, c.Active())

	plan := &domain.Plan{ID: "p1", Actions: []domain.Action{trade.Buy{Good: "ore"}, trade.Idle{}}}
	c.Install(plan)
	assert.True(t, c.Active())
	assert.Equal(t, 2, c.Remaining())

	a, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, trade.Buy{Good: "ore"}, a)
	assert.Equal(t, 1, c.Position())

	peek, err := c.Peek()
	require.NoError(t, err)
	assert.Equal(t, trade.Idle{}, peek)
	assert.Equal(t, 1, c.Position(), "peek does not advance")

	_, err = c.Next()
	require.NoError(t, err)

	_, err = c.Next()
	assert.ErrorIs(t, err, domain.ErrPlanExhausted)
	_, err = c.Next()
	assert.ErrorIs(t, err, domain.ErrPlanExhausted, "stays exhausted")
	assert.Zero(t, c.Remaining())

	c.Install(plan)
	assert.Zero(t, c.Position(), "installing rewinds")

	c.Invalidate()
	assert.Nil(t, c.Plan())
	_, err = c.Next()
	assert.ErrorIs(t, err, domain.ErrNoPlan)
}

func TestCursor_EmptyPlanIsExhausted(t *testing.T) {
	var c runner.Cursor
	c.Install(&domain.Plan{ID: "empty"})

	_, err := c.Next()
	assert.ErrorIs(t, err, domain.ErrPlanExhausted)
}

func TestCursor_Restore(t *testing.T) {
	var c runner.Cursor
	plan := &domain.Plan{Actions: []domain.Action{trade.Idle{}}}

	require.NoError(t, c.Restore(plan, 1))
	assert.Zero(t, c.Remaining())

	assert.Error(t, c.Restore(plan, 2))
	assert.Error(t, c.Restore(plan, -1))
}

func TestCursor_Copy(t *testing.T) {
	var c runner.Cursor
	c.Install(&domain.Plan{Actions: []domain.Action{trade.Idle{}, trade.Idle{}}})
	_, err := c.Next()
	require.NoError(t, err)

	snapshot := c
	_, err = c.Next()
	require.NoError(t, err)

	assert.True(t, snapshot.Active())
	assert.Equal(t, 1, snapshot.Position())
	assert.Equal(t, 1, snapshot.Remaining())
	assert.Equal(t, 2, snapshot.Plan().Len())
	_, err = snapshot.Peek()
	assert.NoError(t, err, "a copy keeps its own position")
	assert.Zero(t, c.Remaining())
}
