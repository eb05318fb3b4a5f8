package app

import "sort"

// BType defines the type of value stored in a Value.
type BType int

const (
	BString BType = iota
	BInt
	BList
	BDict
)

func (t BType) String() string {
	switch t {
	case BString:
		return "string"
	case BInt:
		return "integer"
	case BList:
		return "list"
	case BDict:
		return "dict"
	}
	return "unknown"
}

// Value is a decoded Bencode value. It is implemented by exactly four
// types: Int, Str, List and Dict.
type Value interface {
	Type() BType
	bencodeValue()
}

// Int is a Bencode integer.
type Int int64

// Str is a Bencode byte string. It may hold arbitrary octets.
type Str string

// List is an ordered sequence of values.
type List []Value

// Dict maps byte-string keys to values. Iteration order carries no
// meaning; encoding always emits keys in byte-wise ascending order.
type Dict map[string]Value

func (Int) Type() BType  { return BInt }
func (Str) Type() BType  { return BString }
func (List) Type() BType { return BList }
func (Dict) Type() BType { return BDict }

func (Int) bencodeValue()  {}
func (Str) bencodeValue()  {}
func (List) bencodeValue() {}
func (Dict) bencodeValue() {}

// Get returns the value stored under key.
func (d Dict) Get(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

// Keys returns the keys of d in canonical order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
