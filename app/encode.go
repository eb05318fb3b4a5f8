package app

import (
	"fmt"
	"sort"
	"strconv"
)

// Signed is the set of integer types EncodeInt accepts. Bencode has no
// width distinction, so every width shares one encoding path.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Encode encodes a Value into its canonical bencoded form.
func Encode(v Value) []byte {
	return AppendEncode(nil, v)
}

// AppendEncode appends the canonical encoding of v to dst and returns the
// extended buffer.
func AppendEncode(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case Str:
		return appendString(dst, string(v))
	case Int:
		return appendInt(dst, int64(v))
	case List:
		dst = append(dst, 'l')
		for _, item := range v {
			dst = AppendEncode(dst, item)
		}
		return append(dst, 'e')
	case Dict:
		return appendDict(dst, v)
	case nil:
		panic("bencode: cannot encode nil value")
	default:
		panic(fmt.Sprintf("bencode: unknown value type %T", v))
	}
}

// EncodeString encodes a string into bencode format.
func EncodeString(s string) []byte {
	return appendString(nil, s)
}

// EncodeBytes encodes a byte slice into bencode format.
func EncodeBytes(b []byte) []byte {
	return appendString(nil, string(b))
}

// EncodeInt encodes an integer of any signed width into bencode format.
func EncodeInt[T Signed](i T) []byte {
	return appendInt(nil, int64(i))
}

// EncodeList encodes a list of values into bencode format.
func EncodeList(l List) []byte {
	return AppendEncode(nil, l)
}

// EncodeDict encodes a dictionary into bencode format, keys sorted
// byte-wise.
func EncodeDict(d Dict) []byte {
	return appendDict(nil, d)
}

// Marshal encodes a native Go value into bencode format. See FromNative
// for the accepted types.
func Marshal(v any) ([]byte, error) {
	value, err := FromNative(v)
	if err != nil {
		return nil, err
	}
	return Encode(value), nil
}

func appendString(dst []byte, s string) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}

func appendInt(dst []byte, i int64) []byte {
	dst = append(dst, 'i')
	dst = strconv.AppendInt(dst, i, 10)
	return append(dst, 'e')
}

func appendDict(dst []byte, d Dict) []byte {
	// Go string comparison is byte-wise, which is the order Bencode requires.
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dst = append(dst, 'd')
	for _, key := range keys {
		dst = appendString(dst, key)
		dst = AppendEncode(dst, d[key])
	}
	return append(dst, 'e')
}
