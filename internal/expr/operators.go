package expr

import (
	"fmt"
	"strings"
)

// OperatorID identifies an expression kind. It is a stable, opaque
// enumeration key used for dispatch and message formatting; serialized
// plan representations reference the same identifiers.
type OperatorID int

const (
	OperatorAttribute OperatorID = iota
	OperatorConst

	OperatorAdd
	OperatorSubtract
	OperatorMultiply
	OperatorDivide
	OperatorModulo
	OperatorNegate

	OperatorEqual
	OperatorNotEqual
	OperatorLess
	OperatorLessOrEqual
	OperatorGreater
	OperatorGreaterOrEqual

	OperatorAnd
	OperatorOr
	OperatorNot

	OperatorCast

	OperatorAbs
	OperatorFloor
	OperatorCeil
	OperatorSqrt
	OperatorLn
	OperatorExp
	OperatorRound

	OperatorYear
	OperatorMonth
	OperatorDay
	OperatorHour
	OperatorMinute
	OperatorSecond

	OperatorLength
	OperatorLtrim
	OperatorRtrim
	OperatorTrim
	OperatorToUpper
	OperatorToLower
	OperatorToString
	OperatorContains
	OperatorContainsCI
	OperatorStringOffset
	OperatorStringReplace
	OperatorSubstring
	OperatorTrailingSubstring
	OperatorConcat

	OperatorRegexpPartialMatch
	OperatorRegexpFullMatch
	OperatorRegexpExtract
	OperatorRegexpReplace
)

// operatorInfo is read-only registry data: the stable operator name
// and the description template its nodes render with.
type operatorInfo struct {
	name   string
	format string
}

var operatorRegistry = map[OperatorID]operatorInfo{
	OperatorAttribute: {name: "ATTRIBUTE", format: "%s"},
	OperatorConst:     {name: "CONST", format: "%s"},

	OperatorAdd:      {name: "ADD", format: "ADD(%s, %s)"},
	OperatorSubtract: {name: "SUBTRACT", format: "SUBTRACT(%s, %s)"},
	OperatorMultiply: {name: "MULTIPLY", format: "MULTIPLY(%s, %s)"},
	OperatorDivide:   {name: "DIVIDE", format: "DIVIDE(%s, %s)"},
	OperatorModulo:   {name: "MODULO", format: "MODULO(%s, %s)"},
	OperatorNegate:   {name: "NEGATE", format: "NEGATE(%s)"},

	OperatorEqual:          {name: "EQUAL", format: "EQUAL(%s, %s)"},
	OperatorNotEqual:       {name: "NOT_EQUAL", format: "NOT_EQUAL(%s, %s)"},
	OperatorLess:           {name: "LESS", format: "LESS(%s, %s)"},
	OperatorLessOrEqual:    {name: "LESS_OR_EQUAL", format: "LESS_OR_EQUAL(%s, %s)"},
	OperatorGreater:        {name: "GREATER", format: "GREATER(%s, %s)"},
	OperatorGreaterOrEqual: {name: "GREATER_OR_EQUAL", format: "GREATER_OR_EQUAL(%s, %s)"},

	OperatorAnd: {name: "AND", format: "AND(%s, %s)"},
	OperatorOr:  {name: "OR", format: "OR(%s, %s)"},
	OperatorNot: {name: "NOT", format: "NOT(%s)"},

	OperatorCast: {name: "CAST", format: "CAST(%s)"},

	OperatorAbs:   {name: "ABS", format: "ABS(%s)"},
	OperatorFloor: {name: "FLOOR", format: "FLOOR(%s)"},
	OperatorCeil:  {name: "CEIL", format: "CEIL(%s)"},
	OperatorSqrt:  {name: "SQRT", format: "SQRT(%s)"},
	OperatorLn:    {name: "LN", format: "LN(%s)"},
	OperatorExp:   {name: "EXP", format: "EXP(%s)"},
	OperatorRound: {name: "ROUND", format: "ROUND(%s)"},

	OperatorYear:   {name: "YEAR", format: "YEAR(%s)"},
	OperatorMonth:  {name: "MONTH", format: "MONTH(%s)"},
	OperatorDay:    {name: "DAY", format: "DAY(%s)"},
	OperatorHour:   {name: "HOUR", format: "HOUR(%s)"},
	OperatorMinute: {name: "MINUTE", format: "MINUTE(%s)"},
	OperatorSecond: {name: "SECOND", format: "SECOND(%s)"},

	OperatorLength:            {name: "LENGTH", format: "LENGTH(%s)"},
	OperatorLtrim:             {name: "LTRIM", format: "LTRIM(%s)"},
	OperatorRtrim:             {name: "RTRIM", format: "RTRIM(%s)"},
	OperatorTrim:              {name: "TRIM", format: "TRIM(%s)"},
	OperatorToUpper:           {name: "TO_UPPER", format: "TO_UPPER(%s)"},
	OperatorToLower:           {name: "TO_LOWER", format: "TO_LOWER(%s)"},
	OperatorToString:          {name: "TO_STRING", format: "TO_STRING(%s)"},
	OperatorContains:          {name: "CONTAINS", format: "CONTAINS(%s, %s)"},
	OperatorContainsCI:        {name: "CONTAINS_CI", format: "CONTAINS_CI(%s, %s)"},
	OperatorStringOffset:      {name: "STRING_OFFSET", format: "STRING_OFFSET(%s, %s)"},
	OperatorStringReplace:     {name: "STRING_REPLACE", format: "STRING_REPLACE(%s, %s, %s)"},
	OperatorSubstring:         {name: "SUBSTRING", format: "SUBSTRING(%s, %s, %s)"},
	OperatorTrailingSubstring: {name: "SUBSTRING", format: "SUBSTRING(%s, %s)"},
	OperatorConcat:            {name: "CONCAT", format: "CONCAT(%s)"},

	OperatorRegexpPartialMatch: {name: "REGEXP_PARTIAL_MATCH", format: "REGEXP_PARTIAL_MATCH(%s)"},
	OperatorRegexpFullMatch:    {name: "REGEXP_FULL_MATCH", format: "REGEXP_FULL_MATCH(%s)"},
	OperatorRegexpExtract:      {name: "REGEXP_EXTRACT", format: "REGEXP_EXTRACT(%s)"},
	OperatorRegexpReplace:      {name: "REGEXP_REPLACE", format: "REGEXP_REPLACE(%s, %s)"},
}

// Name returns the stable operator name.
func (op OperatorID) Name() string {
	if info, ok := operatorRegistry[op]; ok {
		return info.name
	}
	return fmt.Sprintf("OPERATOR_%d", int(op))
}

// FormatDescription renders the operator's textual form with the given
// argument renderings, e.g. SUBSTRING($0, $1, $2).
func (op OperatorID) FormatDescription(args ...string) string {
	info, ok := operatorRegistry[op]
	if !ok {
		return fmt.Sprintf("%s(%s)", op.Name(), strings.Join(args, ", "))
	}
	anys := make([]any, len(args))
	for i, a := range args {
		anys[i] = a
	}
	return fmt.Sprintf(info.format, anys...)
}

func (op OperatorID) String() string { return op.Name() }
