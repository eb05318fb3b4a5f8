package app

import (
	"errors"
	"fmt"
	"strconv"
)

// DecodeOption configures a decode call.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict        bool
	allowTrailing bool
	maxSize       int
	maxDepth      int
}

// Strict disallows whitespace between tokens, accepting only the
// canonical grammar.
func Strict() DecodeOption {
	return func(c *decodeConfig) { c.strict = true }
}

// AllowTrailing ignores any input after the first complete value.
func AllowTrailing() DecodeOption {
	return func(c *decodeConfig) { c.allowTrailing = true }
}

// MaxSize rejects inputs longer than n bytes before parsing starts.
func MaxSize(n int) DecodeOption {
	return func(c *decodeConfig) { c.maxSize = n }
}

// MaxDepth rejects lists and dicts nested more than n levels deep.
func MaxDepth(n int) DecodeOption {
	return func(c *decodeConfig) { c.maxDepth = n }
}

// Decode decodes a complete bencoded value and returns it.
//
// Whitespace between tokens is skipped unless Strict is given. Any
// non-whitespace input after the value is an error unless AllowTrailing
// is given. On failure the error is a *ParseError and no value is
// returned.
func Decode(data []byte, opts ...DecodeOption) (Value, error) {
	v, _, err := decode(data, newDecodeConfig(opts))
	return v, err
}

// DecodeBencode decodes a complete bencoded string and returns a Value and an error if any.
func DecodeBencode(bencodedString string, opts ...DecodeOption) (Value, error) {
	return Decode([]byte(bencodedString), opts...)
}

// DecodePrefix decodes the first bencoded value in data and returns it
// along with the number of bytes consumed. Input after the value is left
// alone.
func DecodePrefix(data []byte, opts ...DecodeOption) (Value, int, error) {
	cfg := newDecodeConfig(opts)
	cfg.allowTrailing = true
	return decode(data, cfg)
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func decode(data []byte, cfg decodeConfig) (Value, int, error) {
	if cfg.maxSize > 0 && len(data) > cfg.maxSize {
		return nil, 0, &ParseError{
			Offset:   cfg.maxSize,
			Expected: fmt.Sprintf("input of at most %d bytes", cfg.maxSize),
			Found:    fmt.Sprintf("%d bytes", len(data)),
			Err:      ErrLimitExceeded,
		}
	}
	d := &decoder{data: data, cfg: cfg}
	v, err := d.decodeValue()
	if err != nil {
		return nil, 0, err
	}
	d.skipSpace()
	if !cfg.allowTrailing && d.pos < len(d.data) {
		return nil, 0, d.fail(ErrTrailingData, d.pos, "end of input")
	}
	return v, d.pos, nil
}

// decoder is a cursor over one input buffer.
type decoder struct {
	data  []byte
	pos   int
	depth int
	cfg   decodeConfig
}

func (d *decoder) fail(kind error, pos int, expected string) error {
	return &ParseError{Offset: pos, Expected: expected, Found: found(d.data, pos), Err: kind}
}

// unexpected reports that the byte at the cursor does not match expected,
// or that the input ended.
func (d *decoder) unexpected(expected string) error {
	if d.pos >= len(d.data) {
		return d.fail(ErrUnexpectedEOF, d.pos, expected)
	}
	return d.fail(ErrUnexpectedToken, d.pos, expected)
}

func (d *decoder) skipSpace() {
	if d.cfg.strict {
		return
	}
	for d.pos < len(d.data) && isSpace(d.data[d.pos]) {
		d.pos++
	}
}

func (d *decoder) enter(start int) error {
	d.depth++
	if d.cfg.maxDepth > 0 && d.depth > d.cfg.maxDepth {
		return d.fail(ErrLimitExceeded, start, fmt.Sprintf("nesting depth of at most %d", d.cfg.maxDepth))
	}
	return nil
}

func (d *decoder) decodeValue() (Value, error) {
	d.skipSpace()
	if d.pos >= len(d.data) {
		return nil, d.unexpected("value")
	}
	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.decodeInt()
	case c == 'l':
		return d.decodeList()
	case c == 'd':
		return d.decodeDict()
	case isDigit(c):
		return d.decodeString()
	default:
		return nil, d.unexpected("value")
	}
}

// decodeInt decodes i[-]<digits>e. Leading zeros and negative zero are
// rejected so every integer has exactly one encoding.
func (d *decoder) decodeInt() (Value, error) {
	d.pos++
	d.skipSpace()

	neg := false
	if d.pos < len(d.data) && d.data[d.pos] == '-' {
		neg = true
		d.pos++
		d.skipSpace()
	}

	start := d.pos
	if d.pos >= len(d.data) || !isDigit(d.data[d.pos]) {
		return nil, d.unexpected("digit")
	}
	if d.data[d.pos] == '0' {
		if neg {
			return nil, d.fail(ErrUnexpectedToken, d.pos, "non-zero digit after '-'")
		}
		d.pos++
	} else {
		for d.pos < len(d.data) && isDigit(d.data[d.pos]) {
			d.pos++
		}
	}
	digits := string(d.data[start:d.pos])

	// "i42 e" is accepted outside Strict, like whitespace before any other 'e'.
	d.skipSpace()
	if d.pos >= len(d.data) || d.data[d.pos] != 'e' {
		return nil, d.unexpected("'e' closing integer")
	}

	if neg {
		digits = "-" + digits
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, &ParseError{
				Offset:   start,
				Expected: "integer within 64-bit range",
				Found:    digits,
				Err:      ErrIntegerOverflow,
			}
		}
		return nil, d.fail(ErrUnexpectedToken, start, "integer")
	}
	d.pos++

	return Int(n), nil
}

// decodeString decodes <length>:<bytes>. The payload is copied out of the
// input buffer.
func (d *decoder) decodeString() (Str, error) {
	start := d.pos
	for d.pos < len(d.data) && isDigit(d.data[d.pos]) {
		d.pos++
	}
	if d.pos == start {
		return "", d.unexpected("string length")
	}
	if d.pos >= len(d.data) {
		return "", d.fail(ErrUnexpectedEOF, d.pos, "':' after string length")
	}
	if d.data[d.pos] != ':' {
		return "", d.fail(ErrInvalidLength, d.pos, "':' after string length")
	}

	lengthStr := string(d.data[start:d.pos])
	if len(lengthStr) > 1 && lengthStr[0] == '0' {
		return "", d.fail(ErrInvalidLength, start, "string length without leading zeros")
	}
	length, err := strconv.Atoi(lengthStr)
	if err != nil {
		return "", d.fail(ErrInvalidLength, start, "string length within int range")
	}
	d.pos++

	if length > len(d.data)-d.pos {
		return "", &ParseError{
			Offset:   len(d.data),
			Expected: fmt.Sprintf("%d-byte string starting at offset %d", length, d.pos),
			Err:      ErrUnexpectedEOF,
		}
	}
	s := Str(d.data[d.pos : d.pos+length])
	d.pos += length

	return s, nil
}

func (d *decoder) decodeList() (Value, error) {
	start := d.pos
	d.pos++
	if err := d.enter(start); err != nil {
		return nil, err
	}

	list := List{}
	for {
		d.skipSpace()
		if d.pos >= len(d.data) {
			return nil, d.fail(ErrUnexpectedEOF, d.pos, fmt.Sprintf("value or 'e' closing list at offset %d", start))
		}
		if d.data[d.pos] == 'e' {
			d.pos++
			break
		}
		item, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}

	d.depth--
	return list, nil
}

// decodeDict decodes d(<string><value>)*e. A repeated key overwrites the
// earlier entry.
func (d *decoder) decodeDict() (Value, error) {
	start := d.pos
	d.pos++
	if err := d.enter(start); err != nil {
		return nil, err
	}

	dict := Dict{}
	for {
		d.skipSpace()
		if d.pos >= len(d.data) {
			return nil, d.fail(ErrUnexpectedEOF, d.pos, fmt.Sprintf("key or 'e' closing dict at offset %d", start))
		}
		c := d.data[d.pos]
		if c == 'e' {
			d.pos++
			break
		}
		if !isDigit(c) {
			if c == 'i' || c == 'l' || c == 'd' {
				return nil, d.fail(ErrInvalidDictKey, d.pos, "string key")
			}
			return nil, d.fail(ErrUnexpectedToken, d.pos, "string key or 'e'")
		}

		key, err := d.decodeString()
		if err != nil {
			return nil, err
		}

		d.skipSpace()
		if d.pos < len(d.data) && d.data[d.pos] == 'e' {
			return nil, d.fail(ErrMalformedDict, d.pos, fmt.Sprintf("value for key %q", string(key)))
		}
		item, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = item
	}

	d.depth--
	return dict, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
