package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	jbencode "github.com/jackpal/bencode-go"
)

// ErrUnsupportedType is returned when a Go value has no Bencode
// representation.
var ErrUnsupportedType = errors.New("unsupported type")

// FromNative converts a Go value into a Value.
//
// Integers of any width, bool (as 0 or 1), string, []byte, slices and
// arrays, and maps with string keys are converted directly; Values pass
// through unchanged. Structs become dicts of their exported fields, keyed
// by `bencode:"name,omitempty"` tags, with every field converted by the
// same rules. Unsigned integers above math.MaxInt64 fail with
// ErrIntegerOverflow.
func FromNative(v any) (Value, error) {
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return nil, fmt.Errorf("bencode: nil: %w", ErrUnsupportedType)
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil, fmt.Errorf("bencode: nil %s: %w", rv.Type(), ErrUnsupportedType)
		}
		return fromReflect(rv.Elem())
	}
	if rv.CanInterface() {
		if value, ok := rv.Interface().(Value); ok {
			return value, nil
		}
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("bencode: %d: %w", u, ErrIntegerOverflow)
		}
		return Int(u), nil
	case reflect.Bool:
		if rv.Bool() {
			return Int(1), nil
		}
		return Int(0), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return Str(b), nil
		}
		list := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := fromReflect(rv.Index(i))
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("bencode: map key type %s: %w", rv.Type().Key(), ErrUnsupportedType)
		}
		dict := make(Dict, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := fromReflect(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			dict[iter.Key().String()] = item
		}
		return dict, nil
	case reflect.Struct:
		return fromStruct(rv)
	}
	return nil, fmt.Errorf("bencode: %s: %w", rv.Type(), ErrUnsupportedType)
}

// fromStruct converts the exported fields of a struct into a Dict, keyed
// the way jackpal/bencode-go keys them: the `bencode:"name"` tag if present,
// the field name otherwise. A tag of "-" skips the field and the omitempty
// option skips zero values.
func fromStruct(rv reflect.Value) (Value, error) {
	rt := rv.Type()
	dict := make(Dict, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		key, omitEmpty := fieldKey(field)
		if key == "-" {
			continue
		}
		fv := rv.Field(i)
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		item, err := fromReflect(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s (key %q): %w", field.Name, key, err)
		}
		dict[key] = item
	}
	return dict, nil
}

func fieldKey(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("bencode")
	if !ok {
		return field.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, opts == "omitempty"
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.String, reflect.Array:
		return v.Len() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return v.IsZero()
}

// Native converts a Value into plain Go values: int64, string, []any and
// map[string]any.
func Native(v Value) any {
	switch v := v.(type) {
	case Int:
		return int64(v)
	case Str:
		return string(v)
	case List:
		list := make([]any, 0, len(v))
		for _, item := range v {
			list = append(list, Native(item))
		}
		return list
	case Dict:
		dict := make(map[string]any, len(v))
		for key, item := range v {
			dict[key] = Native(item)
		}
		return dict
	}
	return nil
}

// Unmarshal decodes data and stores the result in the value pointed to by
// target, matching dict keys to `bencode` struct tags. Malformed input is
// reported as a *ParseError before any field is set.
func Unmarshal(data []byte, target any, opts ...DecodeOption) error {
	v, err := Decode(data, opts...)
	if err != nil {
		return err
	}
	if err := jbencode.Unmarshal(bytes.NewReader(Encode(v)), target); err != nil {
		return fmt.Errorf("bencode: unmarshal into %T: %w", target, err)
	}
	return nil
}

// ToJSON encodes a Value into JSON format. JSON strings are text, so a
// Str that is not valid UTF-8 (a torrent's pieces, say) has its invalid
// bytes replaced with U+FFFD; use Encode or Native for a lossless form.
func ToJSON(v Value) ([]byte, error) {
	var b []byte
	var err error

	switch v := v.(type) {
	case Str:
		b, err = json.Marshal(string(v))

	case Int:
		b, err = json.Marshal(int64(v))

	case List:
		encodedList := make([]json.RawMessage, 0, len(v))
		for _, item := range v {
			encodedItem, err := ToJSON(item)
			if err != nil {
				return nil, err
			}
			encodedList = append(encodedList, encodedItem)
		}
		b, err = json.Marshal(encodedList)

	case Dict:
		encodedDict := make(map[string]json.RawMessage, len(v))
		for key, item := range v {
			encodedItem, err := ToJSON(item)
			if err != nil {
				return nil, err
			}
			encodedDict[key] = encodedItem
		}
		b, err = json.Marshal(encodedDict)

	default:
		err = fmt.Errorf("bencode: %T: %w", v, ErrUnsupportedType)
	}

	return b, err
}

// FromJSON converts a JSON document into a Value. Numbers must be
// integers; booleans become 0 or 1; null is rejected.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("bencode: read json: %w", err)
	}
	return fromJSON(doc)
}

func fromJSON(doc any) (Value, error) {
	switch doc := doc.(type) {
	case json.Number:
		i, err := doc.Int64()
		if err != nil {
			return nil, fmt.Errorf("bencode: json number %s: %w", doc, ErrUnsupportedType)
		}
		return Int(i), nil
	case []any:
		list := make(List, 0, len(doc))
		for _, item := range doc {
			v, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case map[string]any:
		dict := make(Dict, len(doc))
		for key, item := range doc {
			v, err := fromJSON(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			dict[key] = v
		}
		return dict, nil
	}
	return FromNative(doc)
}
