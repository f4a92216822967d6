package database

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// newID returns a 32-character hex identifier suitable for string primary
// keys.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// fieldByColumn resolves the struct field backing the given column name,
// matching either an explicit gorm column tag or the snake-cased field name.
// Embedded structs are walked. The boolean reports whether a field was found.
func fieldByColumn(v reflect.Value, column string) (reflect.Value, bool) {
	v = reflect.Indirect(v)
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous {
			if fv, ok := fieldByColumn(v.Field(i), column); ok {
				return fv, true
			}
			continue
		}
		if columnName(sf) == column {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// columnName returns the database column a struct field maps to.
func columnName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("gorm"); ok {
		for _, part := range strings.Split(tag, ";") {
			if name, found := strings.CutPrefix(strings.TrimSpace(part), "column:"); found {
				return name
			}
		}
	}
	return toSnakeCase(sf.Name)
}

// readKey returns the primary key value of model, or the zero value and false
// when the key field is missing or unset.
func readKey(model any, column string) (any, bool) {
	fv, ok := fieldByColumn(reflect.ValueOf(model), column)
	if !ok || fv.IsZero() {
		return nil, false
	}
	return fv.Interface(), true
}

// ensureKey populates a string primary key field with a generated identifier
// when it is empty. It returns the final key value.
func ensureKey(model any, column string) (any, error) {
	fv, ok := fieldByColumn(reflect.ValueOf(model), column)
	if !ok {
		return nil, fmt.Errorf("model %T has no field for column %q", model, column)
	}
	if !fv.IsZero() {
		return fv.Interface(), nil
	}
	if fv.Kind() == reflect.String && fv.CanSet() {
		id := newID()
		fv.SetString(id)
		return id, nil
	}
	return fv.Interface(), nil
}

// setKey writes value into the primary key field of model, converting when
// the types differ but are convertible. Missing or unsettable fields are left
// alone.
func setKey(model any, column string, value any) {
	fv, ok := fieldByColumn(reflect.ValueOf(model), column)
	if !ok || !fv.CanSet() || value == nil {
		return
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Type().AssignableTo(fv.Type()):
		fv.Set(rv)
	case rv.Type().ConvertibleTo(fv.Type()):
		fv.Set(rv.Convert(fv.Type()))
	}
}

// toSnakeCase converts a Go field name to its conventional column form.
func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
