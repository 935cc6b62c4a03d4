// Package database builds parameterized SELECT statements from optional
// filters. Identifiers are quoted with pgx.Identifier; values are always bound.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Op is a comparison operator for a column predicate.
type Op string

const (
	Eq    Op = "="
	NotEq Op = "!="
	Gt    Op = ">"
	Lt    Op = "<"
	Gte   Op = ">="
	Lte   Op = "<="
	ILike Op = "ILIKE"
	// AnyOf binds a slice and matches column = ANY($n).
	AnyOf Op = "ANY"
	// Contains binds a value and matches $n = ANY(column) for array columns.
	Contains Op = "CONTAINS"
	IsNull   Op = "IS NULL"
	raw      Op = "RAW"
)

// Predicate is one AND-ed term of a WHERE clause.
type Predicate struct {
	Column string
	Op     Op
	Value  any
	sql    string
	args   []any
}

// Where builds a column predicate.
func Where(column string, op Op, value any) Predicate {
	return Predicate{Column: column, Op: op, Value: value}
}

// Raw builds a predicate from SQL text. Placeholders are numbered from $1
// within the text and renumbered when the statement is assembled.
func Raw(sql string, args ...any) Predicate {
	return Predicate{Op: raw, sql: sql, args: args}
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type order struct {
	column string
	dir    Direction
}

// Query is a SELECT over a single table.
type Query struct {
	table   string
	columns []string
	where   []Predicate
	orders  []order
	limit   int
	offset  int
	lock    bool
}

// Select starts a query. With no columns every column is selected.
func Select(table string, columns ...string) *Query {
	return &Query{table: table, columns: columns, limit: -1, offset: -1}
}

// Where appends predicates.
func (q *Query) Where(preds ...Predicate) *Query {
	q.where = append(q.where, preds...)
	return q
}

// WhereSet appends column = *v only when v is non-nil.
func WhereSet[T any](q *Query, column string, v *T) *Query {
	if v == nil {
		return q
	}
	return q.Where(Where(column, Eq, *v))
}

// OrderBy appends a sort key.
func (q *Query) OrderBy(column string, dir Direction) *Query {
	q.orders = append(q.orders, order{column: column, dir: dir})
	return q
}

// Page sets LIMIT and OFFSET. Negative values are omitted.
func (q *Query) Page(limit, offset int) *Query {
	q.limit = limit
	q.offset = offset
	return q
}

// ForUpdate appends FOR UPDATE.
func (q *Query) ForUpdate() *Query {
	q.lock = true
	return q
}

// Build renders the statement and its arguments.
func (q *Query) Build() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.selectList())
	b.WriteString(" FROM ")
	b.WriteString(quoteQualified(q.table))

	where, args := buildWhere(q.where, 1)
	b.WriteString(where)

	if len(q.orders) > 0 {
		keys := make([]string, len(q.orders))
		for i, o := range q.orders {
			keys[i] = quoteQualified(o.column)
			if o.dir == Asc || o.dir == Desc {
				keys[i] += " " + string(o.dir)
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}
	if q.limit >= 0 {
		args = append(args, q.limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.offset >= 0 {
		args = append(args, q.offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	if q.lock {
		b.WriteString(" FOR UPDATE")
	}
	return b.String(), args
}

// BuildCount renders SELECT COUNT(*) with the same predicates and no paging.
func (q *Query) BuildCount() (string, []any) {
	where, args := buildWhere(q.where, 1)
	return "SELECT COUNT(*) FROM " + quoteQualified(q.table) + where, args
}

func (q *Query) selectList() string {
	if len(q.columns) == 0 {
		return "*"
	}
	cols := make([]string, len(q.columns))
	for i, c := range q.columns {
		cols[i] = quoteQualified(c)
	}
	return strings.Join(cols, ", ")
}

func quoteQualified(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

func buildWhere(preds []Predicate, next int) (string, []any) {
	terms := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		term, termArgs := p.render(next)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		args = append(args, termArgs...)
		next += len(termArgs)
	}
	if len(terms) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

func (p Predicate) render(next int) (string, []any) {
	if p.Op == raw {
		return renumber(p.sql, p.args, next)
	}
	if p.Column == "" {
		return "", nil
	}
	col := quoteQualified(p.Column)
	switch p.Op {
	case IsNull:
		return col + " IS NULL", nil
	case AnyOf:
		rv := reflect.ValueOf(p.Value)
		if rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return "", nil
		}
		return fmt.Sprintf("%s = ANY($%d)", col, next), []any{p.Value}
	case Contains:
		return fmt.Sprintf("$%d = ANY(%s)", next, col), []any{p.Value}
	case Eq, NotEq, Gt, Lt, Gte, Lte, ILike:
		return fmt.Sprintf("%s %s $%d", col, p.Op, next), []any{p.Value}
	default:
		return "", nil
	}
}

// renumber rewrites $1..$n in sql to start at next. Placeholders outside the
// supplied arguments are left untouched.
func renumber(sql string, args []any, next int) (string, []any) {
	if sql == "" {
		return "", nil
	}
	mapped := make(map[int]int)
	var out []any
	text := placeholder.ReplaceAllStringFunc(sql, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(args) {
			return m
		}
		if _, ok := mapped[n]; !ok {
			mapped[n] = next + len(out)
			out = append(out, args[n-1])
		}
		return "$" + strconv.Itoa(mapped[n])
	})
	return text, out
}
