// Reflection of record types into column descriptions for diagnostics.

package store

import (
	"fmt"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// ColumnType describes how a record field serializes.
type ColumnType string

const (
	// ColumnTypeText stores strings.
	ColumnTypeText ColumnType = "text"
	// ColumnTypeNumber stores integers and floats.
	ColumnTypeNumber ColumnType = "number"
	// ColumnTypeBool stores booleans.
	ColumnTypeBool ColumnType = "bool"
	// ColumnTypeDate stores time.Time values.
	ColumnTypeDate ColumnType = "date"
	// ColumnTypeJSON stores nested structures.
	ColumnTypeJSON ColumnType = "json"
)

// Column describes one field of a record type.
type Column struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	Required    bool       `json:"required,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Describe reflects T's fields into column descriptions, picking up
// `jsonschema:"description=..."` tags and required fields.
func Describe[T any]() ([]Column, error) {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type must be a struct, got %s", t.Kind())
	}

	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	schema := r.ReflectFromType(t)

	required := make(map[string]bool)
	for _, name := range schema.Required {
		required[name] = true
	}

	var columns []Column
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		colType := ColumnTypeText
		for i := range t.NumField() {
			field := t.Field(i)
			if jsonFieldName(&field) == name {
				colType = goTypeToColumnType(field.Type)
				break
			}
		}
		columns = append(columns, Column{
			Name:        name,
			Type:        colType,
			Required:    required[name],
			Description: pair.Value.Description,
		})
	}
	return columns, nil
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(field *reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	for i, c := range tag {
		if c == ',' {
			if i == 0 {
				return field.Name
			}
			return tag[:i]
		}
	}
	return tag
}

func goTypeToColumnType(t reflect.Type) ColumnType {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeFor[time.Time]() {
		return ColumnTypeDate
	}
	switch t.Kind() {
	case reflect.String:
		return ColumnTypeText
	case reflect.Bool:
		return ColumnTypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ColumnTypeNumber
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		return ColumnTypeJSON
	default:
		return ColumnTypeText
	}
}
