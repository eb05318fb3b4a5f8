package app

import (
	"crypto/sha1"
	"fmt"
)

// CanonicalHash calculates the SHA1 hash of the canonical bencoded form of v.
// Two values that differ only in dict insertion order hash the same.
func CanonicalHash(v Value) []byte {
	h := sha1.New()
	h.Write(Encode(v))
	return h.Sum(nil)
}

// InfoHash calculates the SHA1 hash of the bencoded `info` dictionary of
// a decoded torrent file.
func InfoHash(root Value) ([]byte, error) {
	dict, ok := root.(Dict)
	if !ok {
		return nil, fmt.Errorf("bencode: torrent root is a %v, not a dict", typeOf(root))
	}
	info, ok := dict.Get("info")
	if !ok {
		return nil, fmt.Errorf("bencode: torrent has no info dict")
	}
	if _, ok := info.(Dict); !ok {
		return nil, fmt.Errorf("bencode: torrent info is a %v, not a dict", typeOf(info))
	}
	return CanonicalHash(info), nil
}

func typeOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type().String()
}
