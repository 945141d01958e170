package config

import (
	"reflect"
	"strings"
)

// Strings is a []string that mapstructure can deserialize from a single comma separated string
// or from a list of strings.
type Strings []string

var (
	ourStringsType  = reflect.TypeOf(Strings{})
	stringType      = reflect.TypeOf("")
	stringSliceType = reflect.TypeOf([]string{})
	interfacesType  = reflect.TypeOf([]interface{}{})
)

// DecodeStrings is a mapstructure.DecodeHookFuncValue that decodes a single string value or a
// slice of strings into Strings.
func DecodeStrings(fromValue reflect.Value, toValue reflect.Value) (interface{}, error) {
	if toValue.Type() != ourStringsType {
		return fromValue.Interface(), nil
	}
	switch fromValue.Type() {
	case stringSliceType:
		return Strings(fromValue.Interface().([]string)), nil
	case stringType:
		if fromValue.String() == "" {
			return Strings{}, nil
		}
		return Strings(strings.Split(fromValue.String(), ",")), nil
	case interfacesType:
		// yaml lists
		values := fromValue.Interface().([]interface{})
		res := make(Strings, 0, len(values))
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return fromValue.Interface(), nil
			}
			res = append(res, s)
		}
		return res, nil
	}
	return fromValue.Interface(), nil
}

// SecureString holds a secret, a token or a password, hidden from logs and from marshalled
// configuration
type SecureString string

// String returns an elided version.  It is safe to call for logging.
func (SecureString) String() string {
	return "[SECRET]"
}

// SecureValue returns the actual value of s as a string.
func (s SecureString) SecureValue() string {
	return string(s)
}

func (s SecureString) MarshalText() ([]byte, error) {
	if string(s) == "" {
		return []byte(""), nil
	}
	return []byte("[SECRET]"), nil
}
