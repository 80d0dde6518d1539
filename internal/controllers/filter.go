package controllers

import (
	"fmt"
	"strings"
)

// query accumulates bound arguments alongside the SQL fragments that use
// them, so placeholders never drift from their values.
type query struct {
	args  []interface{}
	where []string
	set   []string
}

func (q *query) bind(v interface{}) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *query) eq(column string, v interface{}) {
	q.where = append(q.where, fmt.Sprintf("%s = %s", column, q.bind(v)))
}

func (q *query) anyOf(column string, v interface{}) {
	q.where = append(q.where, fmt.Sprintf("%s = ANY(%s)", column, q.bind(v)))
}

func (q *query) gte(column string, v interface{}) {
	q.where = append(q.where, fmt.Sprintf("%s >= %s", column, q.bind(v)))
}

func (q *query) lte(column string, v interface{}) {
	q.where = append(q.where, fmt.Sprintf("%s <= %s", column, q.bind(v)))
}

func (q *query) assign(column string, v interface{}) {
	q.set = append(q.set, fmt.Sprintf("%s = %s", column, q.bind(v)))
}

func (q *query) whereClause() string {
	if len(q.where) == 0 {
		return " WHERE 1=1"
	}
	return " WHERE 1=1 AND " + strings.Join(q.where, " AND ")
}

func (q *query) setClause() string {
	return strings.Join(q.set, ", ")
}
