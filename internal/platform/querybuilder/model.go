package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the exported, db-tagged fields of a
// struct. Fields tagged `db:"name,readonly"` are skipped so columns with
// database defaults stay untouched.
func InsertModel(table string, model any, returning ...string) (string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", nil, fmt.Errorf("querybuilder: model for %s is nil", table)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("querybuilder: model for %s must be a struct, got %s", table, value.Kind())
	}

	b := InsertInto(table).Returning(returning...)
	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" || strings.Contains(opts, "readonly") {
			continue
		}
		b.Set(name, value.Field(i).Interface())
	}
	return b.ToSQL()
}
