package repository

import (
	"reflect"
	"strings"
	"time"
	"unicode"
)

type field struct {
	name   string // struct field name
	column string
	index  []int
}

type fields []field

func (fs fields) byField(name string) (field, bool) {
	for _, f := range fs {
		if f.name == name {
			return f, true
		}
	}

	return field{}, false
}

func (fs fields) byColumn(column string) (field, bool) {
	for _, f := range fs {
		if f.column == column {
			return f, true
		}
	}

	return field{}, false
}

func (fs fields) columns() []string {
	columns := make([]string, 0, len(fs))
	for _, f := range fs {
		columns = append(columns, f.column)
	}

	return columns
}

func (fs fields) values(entity any) []any {
	val := reflect.ValueOf(entity)

	values := make([]any, 0, len(fs))
	for _, f := range fs {
		values = append(values, val.FieldByIndex(f.index).Interface())
	}

	return values
}

// nonZero returns the columns of entity that are set.
func (fs fields) nonZero(entity any) map[string]any {
	val := reflect.ValueOf(entity)
	set := map[string]any{}

	for _, f := range fs {
		if v := val.FieldByIndex(f.index); !v.IsZero() {
			set[f.column] = v.Interface()
		}
	}

	return set
}

func fieldsOf[E any]() fields {
	return collectFields(reflect.TypeOf(*new(E)), nil)
}

func collectFields(t reflect.Type, parent []int) fields {
	var all fields

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}

		index := append(append([]int{}, parent...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" {
			all = append(all, collectFields(sf.Type, index)...)

			continue
		}

		column := tag
		if column == "" {
			column = toSnakeCase(sf.Name)
		}

		all = append(all, field{name: sf.Name, column: column, index: index})
	}

	return all
}

func typeName[E any]() string {
	return reflect.TypeOf(*new(E)).Name()
}

func idOf[ID id](entity any, f field) ID {
	return ID(reflect.ValueOf(entity).FieldByIndex(f.index).String())
}

// toSnakeCase converts a Go identifier, e.g. CountryCode or UserID, to country_code and user_id.
func toSnakeCase(s string) string {
	runes := []rune(s)

	var b strings.Builder

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// less compares two values of the same column for sorting.
// Unsupported kinds compare as equal.
func less(a, b reflect.Value) bool {
	if a.Kind() == reflect.Pointer {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && !b.IsNil()
		}

		return less(a.Elem(), b.Elem())
	}

	if ta, ok := a.Interface().(time.Time); ok {
		tb, _ := b.Interface().(time.Time)

		return ta.Before(tb)
	}

	switch a.Kind() { //nolint:exhaustive // only kinds used as columns
	case reflect.String:
		return a.String() < b.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float()
	case reflect.Bool:
		return !a.Bool() && b.Bool()
	default:
		return false
	}
}
