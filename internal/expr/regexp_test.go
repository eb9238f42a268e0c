package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/expr"
	"github.com/paveg/quiver/internal/testutil"
)

func TestRegexpPartialMatch(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("abc123", "nope", "999"))

	got := run[bool](t, expr.RegexpPartialMatch(s(), "[0-9]+"), schema, view)
	assert.True(t, *got[0])
	assert.False(t, *got[1])
	assert.True(t, *got[2])
}

func TestRegexpFullMatch(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("123", "abc123", "12a"))

	got := run[bool](t, expr.RegexpFullMatch(s(), "[0-9]+"), schema, view)
	assert.True(t, *got[0])
	assert.False(t, *got[1])
	assert.False(t, *got[2])
}

func TestRegexpExtract(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("abc123", "noop"))

	got := run[string](t, expr.RegexpExtract(s(), "([0-9]+)"), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, "123", *got[0])
	assert.Nil(t, got[1])
}

func TestRegexpExtractWholeMatchWithoutGroup(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("abc123def"))

	got := run[string](t, expr.RegexpExtract(s(), "[0-9]+"), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, "123", *got[0])
}

func TestRegexpReplace(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("a1b2", "none"))

	got := run[string](t, expr.RegexpReplace(s(), "[0-9]", expr.Const("#")), schema, view)
	assert.Equal(t, "a#b#", *got[0])
	assert.Equal(t, "none", *got[1])
}

func TestRegexpReplaceBackreferences(t *testing.T) {
	schema, view := stringBatch(t, testutil.Ptrs("john.doe"))

	got := run[string](t, expr.RegexpReplace(s(), `(\w+)\.(\w+)`, expr.Const("$2 $1")), schema, view)
	require.NotNil(t, got[0])
	assert.Equal(t, "doe john", *got[0])
}

func TestRegexpNullPropagation(t *testing.T) {
	schema, view := stringBatch(t, []*string{testutil.Ptr("a1"), nil})

	got := run[bool](t, expr.RegexpPartialMatch(s(), "[0-9]"), schema, view)
	assert.True(t, *got[0])
	assert.Nil(t, got[1])
}

func TestMalformedPatternFailsAtBind(t *testing.T) {
	schema, _ := stringBatch(t, testutil.Ptrs("x"))

	for _, e := range []expr.Expression{
		expr.RegexpPartialMatch(s(), "("),
		expr.RegexpFullMatch(s(), "("),
		expr.RegexpExtract(s(), "["),
		expr.RegexpReplace(s(), "(", expr.Const("x")),
	} {
		err := bindErr(t, e, schema)
		kind, ok := errors.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, errors.KindPatternCompilation, kind)
		assert.Contains(t, err.Error(), "malformed pattern")
	}
}

func TestInvalidExpressionRendering(t *testing.T) {
	e := expr.RegexpPartialMatch(expr.NamedAttribute("s"), "(")
	assert.Equal(t, "INVALID(REGEXP_PARTIAL_MATCH(s))", e.ToString(false))
}

func TestRegexpRequiresStringInput(t *testing.T) {
	schema, _ := int64Batch(t, testutil.Ptrs[int64](1))

	err := bindErr(t, expr.RegexpPartialMatch(expr.NamedAttribute("n"), "[0-9]"), schema)
	assert.Contains(t, err.Error(), "INT64")
	assert.Contains(t, err.Error(), "STRING expected")
}
