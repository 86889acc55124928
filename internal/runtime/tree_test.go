package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/domain"
)

func TestTree_Accessors(t *testing.T) {
	e := runtime.NewEngine(runtime.WithMaxDepth(2))
	tree, err := e.Build(context.Background(), &counter{}, adders(1, 2))
	require.NoError(t, err)

	root := tree.Root()
	assert.True(t, root.IsRoot())
	assert.Nil(t, root.Action)
	assert.Equal(t, 3, tree.Levels())
	assert.Len(t, tree.Level(1), 2)
	assert.Nil(t, tree.Level(5))
	assert.Nil(t, tree.Node(99))

	children := tree.Children(root)
	require.Len(t, children, 2)
	assert.Equal(t, "add1", children[0].Action.Name())

	leaf := tree.LastLevel()[0]
	path := tree.Path(leaf)
	require.Len(t, path, 3)
	assert.Same(t, root, path[0])
	assert.Same(t, leaf, path[2])

	assert.Equal(t, []domain.Edge{
		{Parent: 0, Child: 1, Label: "add1"},
		{Parent: 0, Child: 2, Label: "add2"},
		{Parent: 1, Child: 3, Label: "add2"},
		{Parent: 2, Child: 4, Label: "add1"},
	}, tree.Edges())
}

func TestReconstruct(t *testing.T) {
	e := runtime.NewEngine(runtime.WithMaxDepth(2))
	tree, err := e.Build(context.Background(), &counter{}, adders(1, 2))
	require.NoError(t, err)

	leaf := tree.Node(4)
	plan := runtime.Reconstruct(tree, leaf, "manual")
	assert.Equal(t, []string{"add2", "add1"}, labels(plan))
	assert.Equal(t, leaf.ID, plan.Target)
	assert.Equal(t, -3.0, plan.Cost)
	assert.Equal(t, 3.0, plan.Gain)

	empty := runtime.Reconstruct(tree, tree.Root(), "manual")
	assert.Zero(t, empty.Len())
	assert.Equal(t, tree.Root().ID, empty.Target)
}

func TestParseGuard(t *testing.T) {
	g, err := runtime.ParseGuard("")
	require.NoError(t, err)
	assert.Equal(t, runtime.GuardByName, g)

	g, err = runtime.ParseGuard("key")
	require.NoError(t, err)
	assert.Equal(t, runtime.GuardByKey, g)

	_, err = runtime.ParseGuard("params")
	assert.Error(t, err)
}
