// Package quiver provides a vectorized expression engine for columnar
// batches. Logical expression trees are built with the constructors
// below, bound against a tuple schema into typed evaluator trees, and
// evaluated batch by batch over Arrow-backed column views.
// This package is the sole public API for the library.
package quiver

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cespare/xxhash/v2"

	"github.com/paveg/quiver/internal/block"
	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/expr"
	"github.com/paveg/quiver/internal/types"
	"github.com/paveg/quiver/internal/version"
)

// Core types, re-exported from the internal packages.
type (
	// DataType identifies a column's logical type.
	DataType = types.DataType
	// Attribute is one named, typed schema slot.
	Attribute = types.Attribute
	// TupleSchema is the ordered row layout expressions bind against.
	TupleSchema = types.TupleSchema
	// View is a columnar batch flowing into and out of evaluation.
	View = block.View
	// Expression is a logical, unbound expression tree.
	Expression = expr.Expression
	// BoundExpression is a schema-resolved vectorized evaluator.
	BoundExpression = expr.BoundExpression
	// ExpressionList holds the arguments of a variadic operator.
	ExpressionList = expr.ExpressionList
	// Config holds the engine configuration.
	Config = config.Config
	// ConcatNullPolicy selects CONCAT's null handling.
	ConcatNullPolicy = config.ConcatNullPolicy
)

// Logical types.
const (
	Int32     = types.Int32
	Int64     = types.Int64
	Float32   = types.Float32
	Float64   = types.Float64
	Bool      = types.Bool
	String    = types.String
	Date      = types.Date
	Timestamp = types.Timestamp
)

// CONCAT null policies.
const (
	ConcatPropagateNull = config.ConcatPropagateNull
	ConcatNullAsEmpty   = config.ConcatNullAsEmpty
)

// Schema and batch construction.
var (
	NewSchema  = types.NewTupleSchema
	MustSchema = types.MustSchema
	NewView    = block.NewView
)

// NewLimitAllocator decorates an allocator with a byte budget; a bound
// tree built over it reports a recoverable allocation failure instead
// of growing past the limit.
var NewLimitAllocator = block.NewLimitAllocator

// Terminal expressions.
var (
	NamedAttribute = expr.NamedAttribute
	AttributeAt    = expr.AttributeAt
	Const          = expr.Const
	NewList        = expr.NewExpressionList
)

// Arithmetic.
var (
	Plus     = expr.Plus
	Minus    = expr.Minus
	Multiply = expr.Multiply
	Divide   = expr.Divide
	Modulo   = expr.Modulo
	Negate   = expr.Negate
)

// Comparison and logic.
var (
	Equal          = expr.Equal
	NotEqual       = expr.NotEqual
	Less           = expr.Less
	LessOrEqual    = expr.LessOrEqual
	Greater        = expr.Greater
	GreaterOrEqual = expr.GreaterOrEqual
	And            = expr.And
	Or             = expr.Or
	Not            = expr.Not
)

// Conversion.
var (
	CastTo   = expr.CastTo
	ToString = expr.ToStringExpr
)

// Math.
var (
	Abs   = expr.Abs
	Floor = expr.Floor
	Ceil  = expr.Ceil
	Round = expr.Round
	Sqrt  = expr.Sqrt
	Ln    = expr.Ln
	Exp   = expr.Exp
)

// Date and time extraction.
var (
	Year   = expr.Year
	Month  = expr.Month
	Day    = expr.Day
	Hour   = expr.Hour
	Minute = expr.Minute
	Second = expr.Second
)

// Strings.
var (
	Length            = expr.Length
	Ltrim             = expr.Ltrim
	Rtrim             = expr.Rtrim
	Trim              = expr.Trim
	ToUpper           = expr.ToUpper
	ToLower           = expr.ToLower
	StringContains    = expr.StringContains
	StringContainsCI  = expr.StringContainsCI
	StringOffset      = expr.StringOffset
	StringReplace     = expr.StringReplace
	Substring         = expr.Substring
	TrailingSubstring = expr.TrailingSubstring
	Concat            = expr.Concat
	ConcatWithPolicy  = expr.ConcatWithPolicy
)

// Regular expressions; patterns compile when the node is constructed.
var (
	RegexpPartialMatch = expr.RegexpPartialMatch
	RegexpFullMatch    = expr.RegexpFullMatch
	RegexpExtract      = expr.RegexpExtract
	RegexpReplace      = expr.RegexpReplace
)

// Bind resolves a logical expression against a schema into a
// vectorized evaluator sized for batches of up to capacity rows. A nil
// allocator falls back to the Go allocator.
func Bind(e Expression, schema *TupleSchema, mem memory.Allocator, capacity int) (BoundExpression, error) {
	return expr.Bind(e, schema, mem, capacity)
}

// BindWithGlobalConfig is Bind driven by the global configuration: the
// configured batch capacity, under an allocator bounded by the
// configured memory limit.
func BindWithGlobalConfig(e Expression, schema *TupleSchema) (BoundExpression, error) {
	cfg := config.GetGlobalConfig()
	mem := block.NewLimitAllocator(nil, cfg.MemoryLimit)
	return expr.Bind(e, schema, mem, cfg.BatchCapacity)
}

// Fingerprint returns a stable hash of an expression's verbose
// rendering, usable as a plan cache or diagnostics key.
func Fingerprint(e Expression) uint64 {
	return xxhash.Sum64String(e.ToString(true))
}

// Configuration management.
var (
	DefaultConfig             = config.Default
	GetGlobalConfig           = config.GetGlobalConfig
	SetGlobalConfig           = config.SetGlobalConfig
	LoadConfigFromFile        = config.LoadConfigFromFile
	ApplyEnvironmentOverrides = config.ApplyEnvironmentOverrides
)

// VersionInfo returns the library's build information.
func VersionInfo() version.BuildInfo {
	return version.Info()
}
