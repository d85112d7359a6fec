package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereEqual(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereEqual("name", "alice")

	assert.Equal(t, []string{"name = :name"}, w.Conditions())
	assert.Equal(t, map[string]any{"name": "alice"}, w.Bindings())
}

func TestWhereBlankColumnIsNoOp(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereEqual("", 1)
	w.WhereEqual("   ", 1)
	w.WhereLike("\t", "x")
	w.WhereNull(" ")
	w.WhereBetween("", 1, 2)

	assert.Empty(t, w.Conditions())
	assert.Empty(t, w.Bindings())
	assert.Equal(t, "", w.WhereClause())
}

func TestWhereLikeWrapsValue(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereLike("title", "go")

	assert.Equal(t, []string{"title LIKE :title"}, w.Conditions())
	assert.Equal(t, "%go%", w.Bindings()["title"])
}

func TestWhereComparisons(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereLess("a", 1).
		WhereLessEqual("b", 2.5).
		WhereBigger("c", "3").
		WhereBiggerEqual("d", 4)

	require.Len(t, w.Conditions(), 4)
	assert.Equal(t, "a < :a", w.Conditions()[0])
	assert.Equal(t, "b <= :b", w.Conditions()[1])
	assert.Equal(t, "c > :c", w.Conditions()[2])
	assert.Equal(t, "d >= :d", w.Conditions()[3])

	// Value types are preserved as given.
	assert.Equal(t, 1, w.Bindings()["a"])
	assert.Equal(t, 2.5, w.Bindings()["b"])
	assert.Equal(t, "3", w.Bindings()["c"])
}

func TestWhereNullTakesNoBinding(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereNull("deleted_at").WhereNotNull("created_at")

	assert.Equal(t, []string{"deleted_at IS NULL", "created_at IS NOT NULL"}, w.Conditions())
	assert.Empty(t, w.Bindings())
}

func TestWhereBetweenDottedColumn(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereBetween("orders.total", 10, 100)

	require.Len(t, w.Conditions(), 1)
	// The fragment keeps the dotted column name; the parameter names do not.
	assert.Equal(t,
		"orders.total BETWEEN :orders_total_lowerBand AND :orders_total_higherBand",
		w.Conditions()[0])
	assert.Equal(t, map[string]any{
		"orders_total_lowerBand":  10,
		"orders_total_higherBand": 100,
	}, w.Bindings())
}

func TestWhereIn(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereIn("id", []any{5, 10, 15})

	require.Len(t, w.Conditions(), 1)
	assert.Equal(t, "id IN (:id_in_0, :id_in_1, :id_in_2)", w.Conditions()[0])
	assert.Equal(t, map[string]any{
		"id_in_0": 5,
		"id_in_1": 10,
		"id_in_2": 15,
	}, w.Bindings())
}

func TestWhereNotInMixedTypes(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereNotIn("flags.state", []any{1, "open", true})

	require.Len(t, w.Conditions(), 1)
	assert.Equal(t,
		"flags.state NOT IN (:flags_state_not_in_0, :flags_state_not_in_1, :flags_state_not_in_2)",
		w.Conditions()[0])
	assert.Equal(t, 1, w.Bindings()["flags_state_not_in_0"])
	assert.Equal(t, "open", w.Bindings()["flags_state_not_in_1"])
	assert.Equal(t, true, w.Bindings()["flags_state_not_in_2"])
}

func TestWhereInEmptySliceIsNoOp(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereIn("id", nil)
	w.WhereNotIn("id", []any{})

	assert.Empty(t, w.Conditions())
}

func TestWhereClauseJoinsWithAnd(t *testing.T) {
	w := &WhereBuilder{}
	w.WhereEqual("a", 1).WhereBigger("b", 2)

	assert.Equal(t, " WHERE a = :a AND b > :b", w.WhereClause())
}
