// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package query

import (
	"strings"
	"time"

	"github.com/tomtom215/accessboard/internal/slots"
)

// Filter accumulates AND-ed conditions over access_buckets columns together
// with their bound arguments.
type Filter struct {
	conds []string
	args  []interface{}
}

// NewFilter returns a filter that matches every row.
func NewFilter() *Filter {
	return &Filter{}
}

// And appends cond, whose placeholders are bound to args in order.
func (f *Filter) And(cond string, args ...interface{}) *Filter {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
	return f
}

// OnDate keeps rows of one calendar date.
func (f *Filter) OnDate(d slots.Date) *Filter {
	return f.And("date = CAST(? AS DATE)", d.String())
}

// DateBetween keeps rows in [from, to]; a nil bound is open. Dates are bound
// as YYYY-MM-DD text and cast by DuckDB, so no time zone is involved.
func (f *Filter) DateBetween(from, to *slots.Date) *Filter {
	if from != nil {
		f.And("date >= CAST(? AS DATE)", from.String())
	}
	if to != nil {
		f.And("date <= CAST(? AS DATE)", to.String())
	}
	return f
}

// WeekdaysBetween keeps rows whose day_of_week (Sunday = 0) is in
// [first, last].
func (f *Filter) WeekdaysBetween(first, last time.Weekday) *Filter {
	return f.And("day_of_week BETWEEN ? AND ?", int(first), int(last))
}

// Len is the number of conditions.
func (f *Filter) Len() int { return len(f.conds) }

// Clause returns the conditions joined with AND, or "TRUE" when there are
// none, plus the arguments to bind.
func (f *Filter) Clause() (string, []interface{}) {
	if len(f.conds) == 0 {
		return "TRUE", nil
	}
	return strings.Join(f.conds, " AND "), f.args
}

// Where is Clause prefixed with "WHERE ", or "" when there are no
// conditions.
func (f *Filter) Where() (string, []interface{}) {
	if len(f.conds) == 0 {
		return "", nil
	}
	clause, args := f.Clause()
	return "WHERE " + clause, args
}
