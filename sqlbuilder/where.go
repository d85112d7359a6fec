package sqlbuilder

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates SQL boolean fragments together with the named
// bindings they reference. Fragments are joined with AND by the statement
// assemblers. Calls with a blank column name (or an empty slice for the IN
// variants) are silent no-ops.
type WhereBuilder struct {
	conditions []string
	bindings   map[string]any
}

// paramName derives a bind-parameter name from a column name. Table-qualified
// columns keep their dotted name in the SQL fragment, but the parameter name
// must be a plain identifier, so dots become underscores.
func paramName(column string) string {
	return strings.ReplaceAll(column, ".", "_")
}

func (w *WhereBuilder) bind(name string, value any) {
	if w.bindings == nil {
		w.bindings = make(map[string]any)
	}
	w.bindings[name] = value
}

func (w *WhereBuilder) compare(column, operator string, value any) *WhereBuilder {
	col := strings.TrimSpace(column)
	if col == "" {
		return w
	}
	p := paramName(col)
	w.conditions = append(w.conditions, fmt.Sprintf("%s %s :%s", col, operator, p))
	w.bind(p, value)
	return w
}

// WhereEqual appends "<col> = :<param>".
func (w *WhereBuilder) WhereEqual(column string, value any) *WhereBuilder {
	return w.compare(column, "=", value)
}

// WhereLike appends "<col> LIKE :<param>" with the value wrapped in %...%.
func (w *WhereBuilder) WhereLike(column string, value string) *WhereBuilder {
	return w.compare(column, "LIKE", "%"+value+"%")
}

// WhereLess appends "<col> < :<param>".
func (w *WhereBuilder) WhereLess(column string, value any) *WhereBuilder {
	return w.compare(column, "<", value)
}

// WhereLessEqual appends "<col> <= :<param>".
func (w *WhereBuilder) WhereLessEqual(column string, value any) *WhereBuilder {
	return w.compare(column, "<=", value)
}

// WhereBigger appends "<col> > :<param>".
func (w *WhereBuilder) WhereBigger(column string, value any) *WhereBuilder {
	return w.compare(column, ">", value)
}

// WhereBiggerEqual appends "<col> >= :<param>".
func (w *WhereBuilder) WhereBiggerEqual(column string, value any) *WhereBuilder {
	return w.compare(column, ">=", value)
}

// WhereBetween appends a BETWEEN fragment with two bindings suffixed
// _lowerBand and _higherBand. No low<=high validation is performed.
func (w *WhereBuilder) WhereBetween(column string, low, high any) *WhereBuilder {
	col := strings.TrimSpace(column)
	if col == "" {
		return w
	}
	p := paramName(col)
	w.conditions = append(w.conditions,
		fmt.Sprintf("%s BETWEEN :%s_lowerBand AND :%s_higherBand", col, p, p))
	w.bind(p+"_lowerBand", low)
	w.bind(p+"_higherBand", high)
	return w
}

// WhereIn appends "<col> IN (:<param>_in_0, ...)" with one binding per
// element in slice order. Element types are preserved as given.
func (w *WhereBuilder) WhereIn(column string, values []any) *WhereBuilder {
	return w.listCondition(column, "IN", "_in_", values)
}

// WhereNotIn appends "<col> NOT IN (:<param>_not_in_0, ...)".
func (w *WhereBuilder) WhereNotIn(column string, values []any) *WhereBuilder {
	return w.listCondition(column, "NOT IN", "_not_in_", values)
}

func (w *WhereBuilder) listCondition(column, operator, suffix string, values []any) *WhereBuilder {
	col := strings.TrimSpace(column)
	if col == "" || len(values) == 0 {
		return w
	}
	p := paramName(col)
	placeholders := make([]string, len(values))
	for i, v := range values {
		name := fmt.Sprintf("%s%s%d", p, suffix, i)
		placeholders[i] = ":" + name
		w.bind(name, v)
	}
	w.conditions = append(w.conditions,
		fmt.Sprintf("%s %s (%s)", col, operator, strings.Join(placeholders, ", ")))
	return w
}

// WhereNull appends "<col> IS NULL" without a binding.
func (w *WhereBuilder) WhereNull(column string) *WhereBuilder {
	col := strings.TrimSpace(column)
	if col == "" {
		return w
	}
	w.conditions = append(w.conditions, col+" IS NULL")
	return w
}

// WhereNotNull appends "<col> IS NOT NULL" without a binding.
func (w *WhereBuilder) WhereNotNull(column string) *WhereBuilder {
	col := strings.TrimSpace(column)
	if col == "" {
		return w
	}
	w.conditions = append(w.conditions, col+" IS NOT NULL")
	return w
}

// Conditions returns the accumulated fragments in call order.
func (w *WhereBuilder) Conditions() []string {
	return w.conditions
}

// Bindings returns the accumulated bind-parameter map.
func (w *WhereBuilder) Bindings() map[string]any {
	if w.bindings == nil {
		return map[string]any{}
	}
	return w.bindings
}

// WhereClause renders " WHERE c1 AND c2 ..." or an empty string.
func (w *WhereBuilder) WhereClause() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}
