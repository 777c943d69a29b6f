package cf

import (
	"fmt"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"os"
	"reflect"
	"sort"
)

// LoadFile reads the YAML document at path and binds its top-level keys onto cf.
//
func LoadFile(path string, cf interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read [%s]", path)
	}
	data := make(map[string]interface{})
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return errors.Wrapf(err, "unable to unmarshal [%s]", path)
	}
	if err := Load(data, cf); err != nil {
		return errors.Wrapf(err, "unable to load [%s]", path)
	}
	return nil
}

// Load binds data onto the exported fields of the struct pointed to by cf. Keys are the field names, or the value of
// the field's `cf` tag. Keys without a matching field are ignored.
//
func Load(data map[string]interface{}, cf interface{}) error {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() != reflect.Ptr || cfV.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cf type [%s] not pointer to struct", cfV.Type())
	}
	cfV = cfV.Elem()
	for i := 0; i < cfV.NumField(); i++ {
		field := cfV.Field(i)
		if !field.CanSet() {
			continue
		}
		key := keyName(cfV.Type().Field(i))
		v, found := data[key]
		if !found {
			continue
		}
		if err := set(field, key, v); err != nil {
			return err
		}
	}
	return nil
}

func set(field reflect.Value, key string, v interface{}) error {
	mismatch := func() error {
		return errors.Errorf("field '%s' type mismatch, got [%s], expected [%s]", key, reflect.TypeOf(v), field.Type())
	}
	switch field.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		i, ok := v.(int)
		if !ok {
			return mismatch()
		}
		field.SetInt(int64(i))

	case reflect.Float64:
		switch f := v.(type) {
		case float64:
			field.SetFloat(f)
		case int:
			field.SetFloat(float64(f))
		default:
			return mismatch()
		}

	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch()
		}
		field.SetBool(b)

	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return mismatch()
		}
		field.SetString(s)

	case reflect.Map:
		m, ok := v.(map[string]interface{})
		if !ok || field.Type() != reflect.TypeOf(m) {
			return mismatch()
		}
		field.Set(reflect.ValueOf(m))

	default:
		return errors.Errorf("unsupported field type [%s]", field.Type())
	}
	return nil
}

func Dump(label string, cf interface{}) string {
	cfV := reflect.ValueOf(cf)
	if cfV.Kind() == reflect.Ptr {
		cfV = cfV.Elem()
	}
	if cfV.Kind() != reflect.Struct {
		return ""
	}
	out := label + " {\n"
	format := fmt.Sprintf("\t%%-%ds %%v\n", maxKeyLength(cfV))
	for i := 0; i < cfV.NumField(); i++ {
		if cfV.Field(i).CanInterface() {
			key := keyName(cfV.Type().Field(i))
			out += fmt.Sprintf(format, key, dumpValue(cfV.Field(i)))
		}
	}
	out += "}"
	return out
}

func dumpValue(v reflect.Value) interface{} {
	if v.Kind() != reflect.Map || v.Len() < 1 {
		return v.Interface()
	}
	var keys []string
	for _, k := range v.MapKeys() {
		keys = append(keys, fmt.Sprintf("%v", k.Interface()))
	}
	sort.Strings(keys)
	return keys
}

func keyName(v reflect.StructField) string {
	key := v.Name
	tag := v.Tag.Get("cf")
	if tag != "" {
		key = tag
	}
	return key
}

func maxKeyLength(cfV reflect.Value) int {
	maxKeyLength := 0
	for i := 0; i < cfV.NumField(); i++ {
		key := keyName(cfV.Type().Field(i))
		if len(key) > maxKeyLength {
			maxKeyLength = len(key)
		}
	}
	return maxKeyLength
}
