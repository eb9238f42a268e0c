package expr

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	qerrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/types"
)

// Year extracts the calendar year from a DATE or DATETIME expression.
func Year(child Expression) Expression {
	return newUnaryExpression(OperatorYear, child,
		dateExtractFactory(OperatorYear, func(t time.Time) int64 { return int64(t.Year()) }, true))
}

// Month extracts the month (1-12) from a DATE or DATETIME expression.
func Month(child Expression) Expression {
	return newUnaryExpression(OperatorMonth, child,
		dateExtractFactory(OperatorMonth, func(t time.Time) int64 { return int64(t.Month()) }, true))
}

// Day extracts the day of month from a DATE or DATETIME expression.
func Day(child Expression) Expression {
	return newUnaryExpression(OperatorDay, child,
		dateExtractFactory(OperatorDay, func(t time.Time) int64 { return int64(t.Day()) }, true))
}

// Hour extracts the hour (0-23) from a DATETIME expression.
func Hour(child Expression) Expression {
	return newUnaryExpression(OperatorHour, child,
		dateExtractFactory(OperatorHour, func(t time.Time) int64 { return int64(t.Hour()) }, false))
}

// Minute extracts the minute from a DATETIME expression.
func Minute(child Expression) Expression {
	return newUnaryExpression(OperatorMinute, child,
		dateExtractFactory(OperatorMinute, func(t time.Time) int64 { return int64(t.Minute()) }, false))
}

// Second extracts the second from a DATETIME expression.
func Second(child Expression) Expression {
	return newUnaryExpression(OperatorSecond, child,
		dateExtractFactory(OperatorSecond, func(t time.Time) int64 { return int64(t.Second()) }, false))
}

// All calendar arithmetic is performed in UTC; timestamps are
// nanoseconds since the Unix epoch, dates are days since the epoch.
func dateExtractFactory(op OperatorID, extract func(time.Time) int64, allowDate bool) boundUnaryFactory {
	return func(child BoundExpression, mem memory.Allocator, capacity int, description string) (BoundExpression, error) {
		var node BoundExpression
		var err error
		switch {
		case child.ResultType() == types.Timestamp:
			node, err = newBoundUnary[arrow.Timestamp, int64](op, child, types.Int64, mem, capacity,
				func(ts arrow.Timestamp) (int64, bool) {
					return extract(time.Unix(0, int64(ts)).UTC()), true
				})
		case child.ResultType() == types.Date && allowDate:
			node, err = newBoundUnary[arrow.Date32, int64](op, child, types.Int64, mem, capacity,
				func(d arrow.Date32) (int64, bool) {
					return extract(d.ToTime()), true
				})
		default:
			expected := "DATETIME"
			if allowDate {
				expected = "DATE or DATETIME"
			}
			err = qerrors.NewTypeMismatchError(description, types.Name(child.ResultType()), expected, "")
		}
		if err != nil {
			return failBind(err, child)
		}
		return node, nil
	}
}
