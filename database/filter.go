package database

import (
	"reflect"

	"gorm.io/gorm"
)

// Filter accumulates equality conditions for read operations. Conditions
// whose value is empty are dropped, so callers can pass optional inputs
// straight through without pre-checking them.
type Filter struct {
	conds          []condition
	includeDeleted bool
}

type condition struct {
	column string
	value  any
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds a column = value condition. Nil and zero-valued inputs are ignored
// so the condition never constrains on an absent value.
func (f *Filter) Eq(column string, value any) *Filter {
	if isEmptyValue(value) {
		return f
	}
	f.conds = append(f.conds, condition{column: column, value: value})
	return f
}

// IncludeDeleted widens reads to rows carrying the soft-delete flag.
func (f *Filter) IncludeDeleted() *Filter {
	f.includeDeleted = true
	return f
}

// apply adds the accumulated conditions to tx. A nil filter is a no-op.
func (f *Filter) apply(tx *gorm.DB) *gorm.DB {
	if f == nil {
		return tx
	}
	for _, c := range f.conds {
		tx = tx.Where(c.column+" = ?", c.value)
	}
	return tx
}

// rangeAll reports whether soft-deleted rows should be visible.
func (f *Filter) rangeAll() bool {
	return f != nil && f.includeDeleted
}

// isEmptyValue reports whether v carries no usable value.
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil() || isEmptyValue(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	}
	return false
}
