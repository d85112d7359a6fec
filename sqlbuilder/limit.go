package sqlbuilder

import (
	"fmt"
	"math"
	"strings"
)

// LimitBuilder tracks LIMIT/OFFSET state plus the ordering recorded by
// First/Last. The zero value has neither limit nor offset set.
type LimitBuilder struct {
	limit       int
	limitSet    bool
	offset      int
	offsetSet   bool
	orderColumn string
	descending  bool
}

// Limit sets the row cap. Negative values are silently ignored.
func (l *LimitBuilder) Limit(n int) *LimitBuilder {
	if n < 0 {
		return l
	}
	l.limit = n
	l.limitSet = true
	return l
}

// Offset sets the row offset. Negative values are silently ignored.
func (l *LimitBuilder) Offset(n int) *LimitBuilder {
	if n < 0 {
		return l
	}
	l.offset = n
	l.offsetSet = true
	return l
}

// Paginate sets limit=perPage and offset=(page-1)*perPage. Both arguments
// must be >= 1; otherwise the prior state is left untouched.
func (l *LimitBuilder) Paginate(page, perPage int) *LimitBuilder {
	if page < 1 || perPage < 1 {
		return l
	}
	l.limit = perPage
	l.limitSet = true
	l.offset = (page - 1) * perPage
	l.offsetSet = true
	return l
}

// First caps the result at n rows ordered ascending by column ("id" when
// blank) and resets any offset. Non-positive n is a no-op.
func (l *LimitBuilder) First(n int, column string) *LimitBuilder {
	return l.ordered(n, column, false)
}

// Last is First with descending order.
func (l *LimitBuilder) Last(n int, column string) *LimitBuilder {
	return l.ordered(n, column, true)
}

func (l *LimitBuilder) ordered(n int, column string, desc bool) *LimitBuilder {
	if n <= 0 {
		return l
	}
	col := strings.TrimSpace(column)
	if col == "" {
		col = "id"
	}
	l.limit = n
	l.limitSet = true
	l.offsetSet = false
	l.offset = 0
	l.orderColumn = col
	l.descending = desc
	return l
}

// NoLimit clears both limit and offset.
func (l *LimitBuilder) NoLimit() *LimitBuilder {
	l.limitSet = false
	l.limit = 0
	l.offsetSet = false
	l.offset = 0
	return l
}

// All is an alias for NoLimit.
func (l *LimitBuilder) All() *LimitBuilder {
	return l.NoLimit()
}

// GetLimit reports the limit and whether it is set.
func (l *LimitBuilder) GetLimit() (int, bool) {
	return l.limit, l.limitSet
}

// GetOffset reports the offset and whether it is set.
func (l *LimitBuilder) GetOffset() (int, bool) {
	return l.offset, l.offsetSet
}

// LimitClause renders the trailing LIMIT/OFFSET fragment. An offset without
// a limit gets an effectively unlimited row cap, since OFFSET cannot stand
// alone. An offset of zero is omitted.
func (l *LimitBuilder) LimitClause() string {
	switch {
	case l.limitSet && l.offsetSet && l.offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", l.limit, l.offset)
	case l.limitSet:
		return fmt.Sprintf(" LIMIT %d", l.limit)
	case l.offsetSet:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", int64(math.MaxInt64), l.offset)
	default:
		return ""
	}
}

// OrderClause renders the ordering recorded by First/Last, if any.
func (l *LimitBuilder) OrderClause() string {
	if l.orderColumn == "" {
		return ""
	}
	direction := "ASC"
	if l.descending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", l.orderColumn, direction)
}
