// Package types describes attribute types and row layouts for the
// expression engine. The type registry is read-only, process-wide data
// initialized at package load.
package types

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// DataType is the closed enumeration of column types the engine
// understands. Every schema attribute and every bound expression has
// exactly one DataType.
type DataType int

const (
	Int32 DataType = iota
	Int64
	Float32
	Float64
	Bool
	String
	Date
	Timestamp
)

// TypeInfo carries the static description of a DataType: its
// human-readable name, the Arrow physical type backing its columns,
// and its trait flags used by operator type rules.
type TypeInfo struct {
	name      string
	arrowType arrow.DataType
	numeric   bool
	integer   bool
	ordered   bool
}

// Name returns the canonical upper-case type name used in plan
// renderings and error messages.
func (t TypeInfo) Name() string { return t.name }

// ArrowType returns the Arrow physical type for columns of this type.
func (t TypeInfo) ArrowType() arrow.DataType { return t.arrowType }

// IsNumeric reports whether arithmetic operators accept this type.
func (t TypeInfo) IsNumeric() bool { return t.numeric }

// IsInteger reports whether this is an integral numeric type.
func (t TypeInfo) IsInteger() bool { return t.integer }

// IsOrdered reports whether ordering comparisons accept this type.
func (t TypeInfo) IsOrdered() bool { return t.ordered }

var typeRegistry = map[DataType]TypeInfo{
	Int32:     {name: "INT32", arrowType: arrow.PrimitiveTypes.Int32, numeric: true, integer: true, ordered: true},
	Int64:     {name: "INT64", arrowType: arrow.PrimitiveTypes.Int64, numeric: true, integer: true, ordered: true},
	Float32:   {name: "FLOAT", arrowType: arrow.PrimitiveTypes.Float32, numeric: true, ordered: true},
	Float64:   {name: "DOUBLE", arrowType: arrow.PrimitiveTypes.Float64, numeric: true, ordered: true},
	Bool:      {name: "BOOL", arrowType: arrow.FixedWidthTypes.Boolean},
	String:    {name: "STRING", arrowType: arrow.BinaryTypes.String, ordered: true},
	Date:      {name: "DATE", arrowType: arrow.FixedWidthTypes.Date32, ordered: true},
	Timestamp: {name: "DATETIME", arrowType: arrow.FixedWidthTypes.Timestamp_ns, ordered: true},
}

// Info returns the registry entry for the given type.
func Info(dt DataType) TypeInfo {
	return typeRegistry[dt]
}

// Name is shorthand for Info(dt).Name(); unknown values render as
// UNKNOWN so error paths never panic while formatting.
func Name(dt DataType) string {
	info, ok := typeRegistry[dt]
	if !ok {
		return "UNKNOWN"
	}
	return info.name
}

func (dt DataType) String() string { return Name(dt) }

// Numeric promotion hierarchy for mixed arithmetic and comparison.
// int64 combined with float32 promotes past float32 to float64 so the
// integer's magnitude survives the conversion.
var promotionLevel = map[DataType]int{
	Int32:   1,
	Int64:   2,
	Float32: 3,
	Float64: 4,
}

// Promote returns the common type a numeric operator evaluates under
// when its operands have the given types. Both inputs must be numeric.
func Promote(left, right DataType) DataType {
	if (left == Int64 && right == Float32) || (left == Float32 && right == Int64) {
		return Float64
	}
	if promotionLevel[right] > promotionLevel[left] {
		return right
	}
	return left
}
