// Package block provides the columnar batch model: views over column
// data flowing between bound expressions, the owned output columns
// bound nodes write into, and the capacity-bounded allocator contract.
package block

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/quiver/internal/types"
)

// View is a columnar batch: one Arrow array per schema attribute and a
// row count no larger than any column's length. A View does not own
// its arrays; whoever produced them manages their lifetime.
type View struct {
	schema *types.TupleSchema
	cols   []arrow.Array
	rows   int
}

// NewView builds a view over the given columns. Column count must
// match the schema and every column must hold at least rows elements.
func NewView(schema *types.TupleSchema, cols []arrow.Array, rows int) (*View, error) {
	if schema.AttributeCount() != len(cols) {
		return nil, fmt.Errorf("view has %d columns, schema declares %d", len(cols), schema.AttributeCount())
	}
	if rows < 0 {
		return nil, fmt.Errorf("negative row count: %d", rows)
	}
	for i, col := range cols {
		if col.Len() < rows {
			return nil, fmt.Errorf("column %s holds %d rows, view declares %d",
				schema.Attribute(i).Name, col.Len(), rows)
		}
	}
	return &View{schema: schema, cols: cols, rows: rows}, nil
}

// NewValueView wraps a single column as the one-attribute view a bound
// expression emits.
func NewValueView(attr types.Attribute, col arrow.Array, rows int) *View {
	return &View{
		schema: types.MustSchema(attr),
		cols:   []arrow.Array{col},
		rows:   rows,
	}
}

// Schema returns the view's row layout.
func (v *View) Schema() *types.TupleSchema { return v.schema }

// RowCount returns the number of valid rows.
func (v *View) RowCount() int { return v.rows }

// Column returns the array backing the attribute at pos.
func (v *View) Column(pos int) arrow.Array { return v.cols[pos] }

// Values returns the single column of a one-attribute view; it is the
// accessor downstream consumers use on Evaluate results.
func (v *View) Values() arrow.Array { return v.cols[0] }
