package expr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Bind resolves a logical expression tree against a schema and
// produces an independent bound tree whose output buffers are sized to
// capacity rows. Binding re-walks the full tree on every call; the
// same logical tree may be bound against different schemas, and the
// resulting bound trees do not share state.
//
// A nil allocator falls back to the Go allocator, matching how the
// rest of the engine treats allocator arguments.
func Bind(e Expression, schema *types.TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	if e == nil {
		return nil, qerrors.NewInvalidArgumentError("Bind", "nil expression")
	}
	if schema == nil {
		return nil, qerrors.NewInvalidArgumentError("Bind", "nil schema")
	}
	if capacity <= 0 {
		return nil, qerrors.NewInvalidArgumentError("Bind",
			fmt.Sprintf("non-positive row capacity %d", capacity))
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return e.DoBind(schema, mem, capacity)
}
