package expr_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver/internal/block"
	"github.com/paveg/quiver/internal/expr"
	"github.com/paveg/quiver/internal/testutil"
	"github.com/paveg/quiver/internal/types"
)

// run binds e at exactly the view's row count, evaluates one batch,
// and reads the output back in pointer form.
func run[T any](t *testing.T, e expr.Expression, schema *types.TupleSchema, view *block.View) []*T {
	t.Helper()
	bound, err := expr.Bind(e, schema, memory.NewGoAllocator(), view.RowCount())
	require.NoError(t, err)
	defer bound.Release()

	out, err := bound.Evaluate(view)
	require.NoError(t, err)
	require.Equal(t, view.RowCount(), out.RowCount())
	return testutil.Values[T](t, out.Values())
}

// bindErr binds e and requires failure, returning the error.
func bindErr(t *testing.T, e expr.Expression, schema *types.TupleSchema) error {
	t.Helper()
	bound, err := expr.Bind(e, schema, memory.NewGoAllocator(), 16)
	require.Error(t, err)
	require.Nil(t, bound)
	return err
}

// stringBatch builds a one-column batch named s.
func stringBatch(t *testing.T, vals []*string) (*types.TupleSchema, *block.View) {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := types.MustSchema(types.Attribute{Name: "s", Type: types.String, Nullable: true})
	col := testutil.Column(t, mem, types.String, vals)
	t.Cleanup(col.Release)
	return schema, testutil.MakeView(t, schema, len(vals), col)
}

// int64Batch builds a one-column batch named n.
func int64Batch(t *testing.T, vals []*int64) (*types.TupleSchema, *block.View) {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := types.MustSchema(types.Attribute{Name: "n", Type: types.Int64, Nullable: true})
	col := testutil.Column(t, mem, types.Int64, vals)
	t.Cleanup(col.Release)
	return schema, testutil.MakeView(t, schema, len(vals), col)
}
