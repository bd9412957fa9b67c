package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrRequired is returned when a field tagged required has no value.
var ErrRequired = errors.New("required environment variable is not set")

var durationType = reflect.TypeFor[time.Duration]()

// ParseEnvTags fills the struct cfg points to from the environment.
//
//	env        variable name, joined to prefix with an underscore
//	default    value used when the variable is unset or empty
//	required   "true" makes an unset variable an ErrRequired error
//	separator  splits slice values, "," when absent
//
// Fields without an env tag are left alone. An empty value leaves the field at
// its zero value.
func ParseEnvTags(prefix string, cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("cfg must be a pointer to a struct")
	}
	v = v.Elem()

	for i := range v.NumField() {
		sf := v.Type().Field(i)
		key, ok := sf.Tag.Lookup("env")
		if !ok || key == "" || !sf.IsExported() {
			continue
		}

		name := GetEnvKeyPrefix(prefix, key)
		value := os.Getenv(name)
		if value == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("%w: %s", ErrRequired, name)
			}
			value = sf.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := set(v.Field(i), value, sf.Tag.Get("separator")); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

func set(field reflect.Value, value, sep string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if sep == "" {
			sep = ","
		}
		parts := strings.Split(value, sep)
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := set(slice.Index(i), strings.TrimSpace(part), ""); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}

	return nil
}
