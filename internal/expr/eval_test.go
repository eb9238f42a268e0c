package expr_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver/internal/block"
	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/expr"
	"github.com/paveg/quiver/internal/testutil"
	"github.com/paveg/quiver/internal/types"
)

func TestArithmetic(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](10, -4, 7))
	n := func() expr.Expression { return expr.NamedAttribute("n") }

	tests := []struct {
		name string
		e    expr.Expression
		want []int64
	}{
		{"add", expr.Plus(n(), expr.Const(5)), []int64{15, 1, 12}},
		{"subtract", expr.Minus(n(), expr.Const(1)), []int64{9, -5, 6}},
		{"multiply", expr.Multiply(n(), expr.Const(3)), []int64{30, -12, 21}},
		{"divide", expr.Divide(n(), expr.Const(2)), []int64{5, -2, 3}},
		{"modulo", expr.Modulo(n(), expr.Const(3)), []int64{1, -1, 1}},
		{"negate", expr.Negate(n()), []int64{-10, 4, -7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run[int64](t, tt.e, schema, view)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				require.NotNil(t, got[i], "row %d", i)
				assert.Equal(t, want, *got[i], "row %d", i)
			}
		})
	}
}

func TestIntegerDivisionByZeroYieldsNull(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](10, 20))

	got := run[int64](t, expr.Divide(expr.NamedAttribute("n"), expr.Const(0)), schema, view)
	assert.Nil(t, got[0])
	assert.Nil(t, got[1])

	got = run[int64](t, expr.Modulo(expr.NamedAttribute("n"), expr.Const(0)), schema, view)
	assert.Nil(t, got[0])
}

func TestFloatDivisionByZeroIsInf(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](1))

	got := run[float64](t, expr.Divide(expr.Const(1.0), expr.Const(0.0)), schema, view)
	require.NotNil(t, got[0])
	assert.True(t, math.IsInf(*got[0], 1))
}

func TestNumericPromotion(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := types.MustSchema(
		types.Attribute{Name: "i32", Type: types.Int32, Nullable: true},
		types.Attribute{Name: "i64", Type: types.Int64, Nullable: true},
		types.Attribute{Name: "f32", Type: types.Float32, Nullable: true},
	)
	i32 := testutil.Column(t, mem, types.Int32, testutil.Ptrs[int32](3))
	i64 := testutil.Column(t, mem, types.Int64, testutil.Ptrs[int64](4))
	f32 := testutil.Column(t, mem, types.Float32, testutil.Ptrs[float32](0.5))
	defer testutil.ReleaseAll(i32, i64, f32)
	view := testutil.MakeView(t, schema, 1, i32, i64, f32)

	tests := []struct {
		name string
		e    expr.Expression
		want types.DataType
	}{
		{"int32 int64", expr.Plus(expr.NamedAttribute("i32"), expr.NamedAttribute("i64")), types.Int64},
		{"int32 float", expr.Plus(expr.NamedAttribute("i32"), expr.NamedAttribute("f32")), types.Float32},
		{"int64 float widens", expr.Plus(expr.NamedAttribute("i64"), expr.NamedAttribute("f32")), types.Float64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound, err := expr.Bind(tt.e, schema, mem, 1)
			require.NoError(t, err)
			defer bound.Release()
			assert.Equal(t, tt.want, bound.ResultType())

			_, err = bound.Evaluate(view)
			require.NoError(t, err)
		})
	}

	got := run[float64](t, expr.Plus(expr.NamedAttribute("i64"), expr.NamedAttribute("f32")), schema, view)
	require.NotNil(t, got[0])
	assert.InDelta(t, 4.5, *got[0], 1e-9)
}

func TestNullPropagation(t *testing.T) {
	schema, view := int64Batch(t, []*int64{testutil.Ptr[int64](1), nil, testutil.Ptr[int64](3)})

	got := run[int64](t, expr.Plus(expr.NamedAttribute("n"), expr.NamedAttribute("n")), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, int64(2), *got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, int64(6), *got[2])
}

func TestComparisons(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](1, 2, 3))
	n := func() expr.Expression { return expr.NamedAttribute("n") }
	two := func() expr.Expression { return expr.Const(2) }

	tests := []struct {
		name string
		e    expr.Expression
		want []bool
	}{
		{"equal", expr.Equal(n(), two()), []bool{false, true, false}},
		{"not equal", expr.NotEqual(n(), two()), []bool{true, false, true}},
		{"less", expr.Less(n(), two()), []bool{true, false, false}},
		{"less or equal", expr.LessOrEqual(n(), two()), []bool{true, true, false}},
		{"greater", expr.Greater(n(), two()), []bool{false, false, true}},
		{"greater or equal", expr.GreaterOrEqual(n(), two()), []bool{false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run[bool](t, tt.e, schema, view)
			for i, want := range tt.want {
				require.NotNil(t, got[i], "row %d", i)
				assert.Equal(t, want, *got[i], "row %d", i)
			}
		})
	}
}

func TestStringComparison(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("apple", "pear"))

	got := run[bool](t, expr.Less(expr.NamedAttribute("s"), expr.Const("banana")), schema, view)
	assert.True(t, *got[0])
	assert.False(t, *got[1])
}

func TestMixedTypeComparisonPromotes(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](2))

	got := run[bool](t, expr.Greater(expr.NamedAttribute("n"), expr.Const(1.5)), schema, view)
	require.NotNil(t, got[0])
	assert.True(t, *got[0])
}

func TestLogical(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](1, 2, 3))
	gt1 := expr.Greater(expr.NamedAttribute("n"), expr.Const(1))
	lt3 := expr.Less(expr.NamedAttribute("n"), expr.Const(3))

	got := run[bool](t, expr.And(gt1, lt3), schema, view)
	assert.Equal(t, []bool{false, true, false}, derefBools(t, got))

	got = run[bool](t, expr.Or(gt1, lt3), schema, view)
	assert.Equal(t, []bool{true, true, true}, derefBools(t, got))

	got = run[bool](t, expr.Not(gt1), schema, view)
	assert.Equal(t, []bool{true, false, false}, derefBools(t, got))
}

func derefBools(t *testing.T, vals []*bool) []bool {
	t.Helper()
	out := make([]bool, len(vals))
	for i, v := range vals {
		require.NotNil(t, v, "row %d", i)
		out[i] = *v
	}
	return out
}

func TestCast(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](3, -7))

	got := run[float64](t, expr.CastTo(expr.NamedAttribute("n"), types.Float64), schema, view)
	assert.Equal(t, 3.0, *got[0])
	assert.Equal(t, -7.0, *got[1])

	// Identity cast keeps the child node.
	bound, err := expr.Bind(expr.CastTo(expr.NamedAttribute("n"), types.Int64), schema, memory.NewGoAllocator(), 2)
	require.NoError(t, err)
	defer bound.Release()
	assert.Equal(t, types.Int64, bound.ResultType())
}

func TestCastRejectsNonNumeric(t *testing.T) {
	schema, _ := stringBatch(t, testutil.Ptrs("x"))
	err := bindErr(t, expr.CastTo(expr.NamedAttribute("s"), types.Float64), schema)
	assert.Contains(t, err.Error(), "STRING")
}

func TestToStringConversion(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := types.MustSchema(
		types.Attribute{Name: "n", Type: types.Int64, Nullable: true},
		types.Attribute{Name: "f", Type: types.Float64, Nullable: true},
		types.Attribute{Name: "b", Type: types.Bool, Nullable: true},
	)
	n := testutil.Column(t, mem, types.Int64, []*int64{testutil.Ptr[int64](42), nil})
	f := testutil.Column(t, mem, types.Float64, testutil.Ptrs(2.5, -0.5))
	b := testutil.Column(t, mem, types.Bool, testutil.Ptrs(true, false))
	defer testutil.ReleaseAll(n, f, b)
	view := testutil.MakeView(t, schema, 2, n, f, b)

	got := run[string](t, expr.ToStringExpr(expr.NamedAttribute("n")), schema, view)
	assert.Equal(t, "42", *got[0])
	assert.Nil(t, got[1])

	got = run[string](t, expr.ToStringExpr(expr.NamedAttribute("f")), schema, view)
	assert.Equal(t, "2.5", *got[0])

	got = run[string](t, expr.ToStringExpr(expr.NamedAttribute("b")), schema, view)
	assert.Equal(t, "true", *got[0])
	assert.Equal(t, "false", *got[1])
}

func TestMathFunctions(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](4))

	tests := []struct {
		name string
		e    expr.Expression
		want float64
	}{
		{"sqrt", expr.Sqrt(expr.NamedAttribute("n")), 2},
		{"floor", expr.Floor(expr.Const(2.7)), 2},
		{"ceil", expr.Ceil(expr.Const(2.1)), 3},
		{"round", expr.Round(expr.Const(2.5)), 3},
		{"ln", expr.Ln(expr.Const(math.E)), 1},
		{"exp", expr.Exp(expr.Const(0.0)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run[float64](t, tt.e, schema, view)
			require.NotNil(t, got[0])
			assert.InDelta(t, tt.want, *got[0], 1e-9)
		})
	}
}

func TestMathDomainErrorsYieldNull(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](1))

	got := run[float64](t, expr.Sqrt(expr.Const(-1.0)), schema, view)
	assert.Nil(t, got[0])

	got = run[float64](t, expr.Ln(expr.Const(0.0)), schema, view)
	assert.Nil(t, got[0])
}

func TestAbsPreservesType(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](-5, 5))

	bound, err := expr.Bind(expr.Abs(expr.NamedAttribute("n")), schema, memory.NewGoAllocator(), 2)
	require.NoError(t, err)
	defer bound.Release()
	assert.Equal(t, types.Int64, bound.ResultType())

	out, err := bound.Evaluate(view)
	require.NoError(t, err)
	got := testutil.Values[int64](t, out.Values())
	assert.Equal(t, int64(5), *got[0])
	assert.Equal(t, int64(5), *got[1])
}

func TestDateExtraction(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := types.MustSchema(
		types.Attribute{Name: "d", Type: types.Date, Nullable: true},
		types.Attribute{Name: "ts", Type: types.Timestamp, Nullable: true},
	)
	when := time.Date(2024, time.March, 5, 13, 45, 30, 0, time.UTC)
	d := testutil.Column(t, mem, types.Date, testutil.Ptrs(arrow.Date32FromTime(when)))
	ts := testutil.Column(t, mem, types.Timestamp, testutil.Ptrs(arrow.Timestamp(when.UnixNano())))
	defer testutil.ReleaseAll(d, ts)
	view := testutil.MakeView(t, schema, 1, d, ts)

	tests := []struct {
		name string
		e    expr.Expression
		want int64
	}{
		{"year of date", expr.Year(expr.NamedAttribute("d")), 2024},
		{"month of date", expr.Month(expr.NamedAttribute("d")), 3},
		{"day of date", expr.Day(expr.NamedAttribute("d")), 5},
		{"year of timestamp", expr.Year(expr.NamedAttribute("ts")), 2024},
		{"hour", expr.Hour(expr.NamedAttribute("ts")), 13},
		{"minute", expr.Minute(expr.NamedAttribute("ts")), 45},
		{"second", expr.Second(expr.NamedAttribute("ts")), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run[int64](t, tt.e, schema, view)
			require.NotNil(t, got[0])
			assert.Equal(t, tt.want, *got[0])
		})
	}
}

func TestTimeOfDayRequiresTimestamp(t *testing.T) {
	schema := types.MustSchema(types.Attribute{Name: "d", Type: types.Date, Nullable: true})

	err := bindErr(t, expr.Hour(expr.NamedAttribute("d")), schema)
	assert.Contains(t, err.Error(), "DATETIME expected")
}

func TestEvaluateAllocationFailure(t *testing.T) {
	inputMem := memory.NewGoAllocator()
	schema := types.MustSchema(types.Attribute{Name: "s", Type: types.String, Nullable: true})
	big := strings.Repeat("x", 64<<10)
	col := testutil.Column(t, inputMem, types.String, testutil.Ptrs(big, big))
	defer col.Release()
	view := testutil.MakeView(t, schema, 2, col)

	// The budget covers the bind-time reserve but not the string data
	// appended during evaluation; the refusal must surface as an error,
	// not a panic.
	mem := block.NewLimitAllocator(nil, 1024)
	bound, err := expr.Bind(expr.ToUpper(expr.NamedAttribute("s")), schema, mem, 2)
	require.NoError(t, err)
	defer bound.Release()

	out, err := bound.Evaluate(view)
	require.Error(t, err)
	assert.Nil(t, out)
	kind, ok := qerrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, qerrors.KindAllocationFailure, kind)
	assert.Contains(t, err.Error(), "could not allocate the output column")
}

func TestIntegerNegateAndAbsWrapAtMinimum(t *testing.T) {
	schema, view := int64Batch(t, testutil.Ptrs[int64](math.MinInt64))

	// Two's-complement wraparound: the minimum value has no positive
	// counterpart and maps to itself.
	got := run[int64](t, expr.Negate(expr.NamedAttribute("n")), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, int64(math.MinInt64), *got[0])

	got = run[int64](t, expr.Abs(expr.NamedAttribute("n")), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, int64(math.MinInt64), *got[0])
}
