package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ExpandTemplates walks the struct pointed to by in and expands ${VAR}
// references in place. String fields are expanded when they carry the
// `template` struct tag (`template:"-"` skips them). Nested structs and
// non-nil struct pointers are always explored. Unexported fields are
// skipped.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}
	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("ExpandTemplates expects *struct; got *%s", v.Type())
	}
	return expandStructInPlace(v, variables)
}

func expandStructInPlace(v reflect.Value, variables map[string]string) error {
	typ := v.Type()
	var errs error
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := v.Field(i)
		tag, hasTemplate := sf.Tag.Lookup("template")

		switch field.Kind() {
		case reflect.String:
			if !hasTemplate || tag == "-" {
				continue
			}
			expanded, err := Expand(field.String(), variables)
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("%s: %w", sf.Name, err))
				continue
			}
			field.SetString(expanded)

		case reflect.Ptr:
			if field.IsNil() || field.Elem().Kind() != reflect.Struct {
				continue
			}
			errs = errors.Join(errs, expandStructInPlace(field.Elem(), variables))

		case reflect.Struct:
			errs = errors.Join(errs, expandStructInPlace(field, variables))
		}
	}
	return errs
}

// Expand replaces ${VAR} references in value. Every referenced variable must
// be present in variables.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
