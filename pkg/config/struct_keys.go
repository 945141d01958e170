package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/treeverse/metastore/pkg/logging"
)

const (
	sep = "."

	validateTag   = "validate"
	requiredValue = "required"
)

// GetStructKeys returns the dotted keys of all leaf fields in a nested struct, naming each
// component after tag or after the field name when untagged. A tag value ending with
// ","+squashValue on an embedded struct leaves that struct's name out of the keys of its
// fields, like mapstructure does. Pointers are followed, maps are leaves.
func GetStructKeys(typ reflect.Type, tag, squashValue string) []string {
	var keys []string
	walkStruct(typ, tag, ","+squashValue, nil, func(key []string, _ reflect.StructField) {
		keys = append(keys, strings.Join(key, sep))
	})
	return keys
}

type leafFunc func(key []string, field reflect.StructField)

func fieldName(field reflect.StructField, tag, squashValue string) (string, bool) {
	name, ok := field.Tag.Lookup(tag)
	if !ok {
		return field.Name, false
	}
	if strings.HasSuffix(name, squashValue) {
		return strings.TrimSuffix(name, squashValue), true
	}
	return name, false
}

func walkStruct(typ reflect.Type, tag, squashValue string, prefix []string, fn leafFunc) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		fn(prefix, reflect.StructField{})
		return
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, squash := fieldName(field, tag, squashValue)
		key := make([]string, len(prefix), len(prefix)+1)
		copy(key, prefix)
		if !squash {
			key = append(key, name)
		}
		fieldType := field.Type
		for fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}
		if fieldType.Kind() == reflect.Struct {
			walkStruct(fieldType, tag, squashValue, key, fn)
			continue
		}
		fn(key, field)
	}
}

// ValidateMissingRequiredKeys returns the keys of fields tagged `validate:"required"` holding a
// zero value
func ValidateMissingRequiredKeys(value interface{}, tag, squashValue string) []string {
	var missing []string
	walkValue(reflect.ValueOf(value), tag, ","+squashValue, nil, func(key []string, field reflect.StructField, v reflect.Value) {
		if field.Tag.Get(validateTag) == requiredValue && v.IsZero() {
			missing = append(missing, strings.Join(key, sep))
		}
	})
	return missing
}

// MapLoggingFields returns the configuration values as logging fields keyed by their dotted
// keys. Values are formatted with %v so secrets are elided.
func MapLoggingFields(value interface{}) logging.Fields {
	fields := logging.Fields{}
	walkValue(reflect.ValueOf(value), "mapstructure", ",squash", nil, func(key []string, _ reflect.StructField, v reflect.Value) {
		fields[strings.Join(key, sep)] = fmt.Sprintf("%v", v.Interface())
	})
	return fields
}

func walkValue(v reflect.Value, tag, squashValue string, prefix []string, fn func([]string, reflect.StructField, reflect.Value)) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, squash := fieldName(field, tag, squashValue)
		key := make([]string, len(prefix), len(prefix)+1)
		copy(key, prefix)
		if !squash {
			key = append(key, name)
		}
		fv := v.Field(i)
		inner := fv
		for inner.Kind() == reflect.Ptr && !inner.IsNil() {
			inner = inner.Elem()
		}
		if inner.Kind() == reflect.Struct {
			walkValue(inner, tag, squashValue, key, fn)
			continue
		}
		fn(key, field, fv)
	}
}
