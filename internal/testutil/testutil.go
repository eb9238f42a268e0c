// Package testutil provides helpers for building columnar test
// batches and reading evaluation results back into Go slices.
//
// Test data is expressed as pointer slices: a nil element marks a null
// row. This keeps null layouts visible at the call site without a
// parallel validity slice.
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver/internal/block"
	"github.com/paveg/quiver/internal/types"
)

// Ptr is shorthand for taking the address of a literal in test tables.
func Ptr[T any](v T) *T { return &v }

// Ptrs lifts a value slice into the pointer form Column expects, with
// no nulls.
func Ptrs[T any](values ...T) []*T {
	out := make([]*T, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}

type appender[T any] interface {
	Append(T)
	AppendNull()
}

type reader[T any] interface {
	Value(i int) T
	IsNull(i int) bool
	Len() int
}

// Column materializes an Arrow array of the given type from pointer
// values; nil elements become nulls. The caller owns the array.
func Column[T any](tb testing.TB, mem memory.Allocator, dt types.DataType, values []*T) arrow.Array {
	tb.Helper()
	b := array.NewBuilder(mem, types.Info(dt).ArrowType())
	defer b.Release()
	ab, ok := b.(appender[T])
	require.True(tb, ok, "builder for %s does not accept %T", types.Name(dt), *new(T))
	for _, v := range values {
		if v == nil {
			ab.AppendNull()
			continue
		}
		ab.Append(*v)
	}
	return b.NewArray()
}

// MakeView assembles a batch from schema-ordered columns.
func MakeView(tb testing.TB, schema *types.TupleSchema, rows int, cols ...arrow.Array) *block.View {
	tb.Helper()
	view, err := block.NewView(schema, cols, rows)
	require.NoError(tb, err)
	return view
}

// Values reads an evaluation result back into pointer form, nil for
// null rows.
func Values[T any](tb testing.TB, arr arrow.Array) []*T {
	tb.Helper()
	r, ok := arr.(reader[T])
	require.True(tb, ok, "array %T does not yield %T", arr, *new(T))
	out := make([]*T, r.Len())
	for i := 0; i < r.Len(); i++ {
		if r.IsNull(i) {
			continue
		}
		v := r.Value(i)
		out[i] = &v
	}
	return out
}

// ReleaseAll releases the given arrays; nil entries are skipped.
func ReleaseAll(arrs ...arrow.Array) {
	for _, a := range arrs {
		if a != nil {
			a.Release()
		}
	}
}
