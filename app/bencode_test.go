package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"int", "i1e", Int(1)},
		{"zero", "i0e", Int(0)},
		{"negative", "i-1e", Int(-1)},
		{"max int64", "i9223372036854775807e", Int(9223372036854775807)},
		{"min int64", "i-9223372036854775808e", Int(-9223372036854775808)},
		{"string", "4:spam", Str("spam")},
		{"empty string", "0:", Str("")},
		{"yellow", "6:yellow", Str("yellow")},
		{"binary string", "3:\xff\x00\x01", Str("\xff\x00\x01")},
		{"string with delimiters", "5:i1e:e", Str("i1e:e")},
		{"empty list", "le", List{}},
		{"list", "l4:spami99ee", List{Str("spam"), Int(99)}},
		{"nested list", "lli1024eee", List{List{Int(1024)}}},
		{"empty dict", "de", Dict{}},
		{"dict", "d2:hi5:theree", Dict{"hi": Str("there")}},
		{"dict of list", "d2:hili1ei2ei3eee", Dict{"hi": List{Int(1), Int(2), Int(3)}}},
		{"nested dict", "d5:outerd5:inneri5eee", Dict{"outer": Dict{"inner": Int(5)}}},
		{"unsorted keys", "d1:bi2e1:ai1ee", Dict{"a": Int(1), "b": Int(2)}},
		{"duplicate key", "d1:ai1e1:ai2ee", Dict{"a": Int(2)}},
		{"empty key", "d0:i7ee", Dict{"": Int(7)}},
		{
			"torrent",
			"d8:announce9:localhost4:infod6:lengthi20e4:name10:sample.txt12:piece lengthi65536eee",
			Dict{
				"announce": Str("localhost"),
				"info": Dict{
					"length":       Int(20),
					"name":         Str("sample.txt"),
					"piece length": Int(65536),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBencode(tt.input)
			if err != nil {
				t.Fatalf("DecodeBencode(%q): %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeBencode(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestDecodeWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{" i1e ", Int(1)},
		{"i 1 e", Int(1)},
		{"i - 5 e", Int(-5)},
		{"l i1e\n i2e\te", List{Int(1), Int(2)}},
		{"d 2:hi i1e e", Dict{"hi": Int(1)}},
		{"3: hi", Str(" hi")},
		{"\r\nle\r\n", List{}},
	}

	for _, tt := range tests {
		got, err := DecodeBencode(tt.input)
		if err != nil {
			t.Errorf("DecodeBencode(%q): %v", tt.input, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("DecodeBencode(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		opts   []DecodeOption
		kind   error
		offset int
	}{
		{"empty input", "", nil, ErrUnexpectedEOF, 0},
		{"blank input", "   ", nil, ErrUnexpectedEOF, 3},
		{"unknown token", "x", nil, ErrUnexpectedToken, 0},
		{"unknown token in list", "lxe", nil, ErrUnexpectedToken, 1},
		{"truncated int", "i1", nil, ErrUnexpectedEOF, 2},
		{"truncated after i", "i", nil, ErrUnexpectedEOF, 1},
		{"empty int", "ie", nil, ErrUnexpectedToken, 1},
		{"sign only", "i-e", nil, ErrUnexpectedToken, 2},
		{"non digit int", "iae", nil, ErrUnexpectedToken, 1},
		{"leading zeros", "i007e", nil, ErrUnexpectedToken, 2},
		{"double zero", "i00e", nil, ErrUnexpectedToken, 2},
		{"negative zero", "i-0e", nil, ErrUnexpectedToken, 2},
		{"int overflow", "i9223372036854775808e", nil, ErrIntegerOverflow, 1},
		{"int underflow", "i-9223372036854775809e", nil, ErrIntegerOverflow, 2},
		{"string overrun", "5:ab", nil, ErrUnexpectedEOF, 4},
		{"missing colon", "3", nil, ErrUnexpectedEOF, 1},
		{"non digit length", "3a:abc", nil, ErrInvalidLength, 1},
		{"leading zero length", "01:a", nil, ErrInvalidLength, 0},
		{"length overflow", "99999999999999999999:a", nil, ErrInvalidLength, 0},
		{"unterminated list", "l", nil, ErrUnexpectedEOF, 1},
		{"unterminated nested list", "lli1ee", nil, ErrUnexpectedEOF, 6},
		{"unterminated dict", "d1:ai1e", nil, ErrUnexpectedEOF, 7},
		{"key without value at eof", "d1:a", nil, ErrUnexpectedEOF, 4},
		{"int key", "di1ei2ee", nil, ErrInvalidDictKey, 1},
		{"list key", "dle1:ae", nil, ErrInvalidDictKey, 1},
		{"dict key", "ddei1ee", nil, ErrInvalidDictKey, 1},
		{"odd pairs", "d1:ae", nil, ErrMalformedDict, 4},
		{"odd pairs after entry", "d1:ai1e5:helloe", nil, ErrMalformedDict, 14},
		{"garbage key", "d-e", nil, ErrUnexpectedToken, 1},
		{"trailing data", "i1ei2e", nil, ErrTrailingData, 3},
		{"trailing after space", "le x", nil, ErrTrailingData, 3},
		{"strict space", "i 1e", []DecodeOption{Strict()}, ErrUnexpectedToken, 1},
		{"strict trailing space", "le ", []DecodeOption{Strict()}, ErrTrailingData, 2},
		{"max size", "i10e", []DecodeOption{MaxSize(3)}, ErrLimitExceeded, 3},
		{"max depth", "llleee", []DecodeOption{MaxDepth(2)}, ErrLimitExceeded, 2},
		{"max depth dict", "d1:ad1:bleee", []DecodeOption{MaxDepth(2)}, ErrLimitExceeded, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBencode(tt.input, tt.opts...)
			if err == nil {
				t.Fatalf("DecodeBencode(%q) = %v, want error", tt.input, got)
			}
			if got != nil {
				t.Errorf("DecodeBencode(%q) returned partial value %v", tt.input, got)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("DecodeBencode(%q) error = %v, want kind %v", tt.input, err, tt.kind)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("DecodeBencode(%q) error %T is not a *ParseError", tt.input, err)
			}
			if perr.Offset != tt.offset {
				t.Errorf("DecodeBencode(%q) offset = %d, want %d (%v)", tt.input, perr.Offset, tt.offset, err)
			}
		})
	}
}

func TestDecodeLimitsAllowValidInput(t *testing.T) {
	got, err := DecodeBencode("llleee", MaxDepth(3), MaxSize(6), Strict())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(List{List{List{}}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAllowTrailing(t *testing.T) {
	got, err := DecodeBencode("i1ei2e", AllowTrailing())
	if err != nil {
		t.Fatal(err)
	}
	if got != Int(1) {
		t.Errorf("got %v, want 1", got)
	}
}

func TestDecodePrefix(t *testing.T) {
	data := []byte("d1:ai1ee<rest>")
	got, n, err := DecodePrefix(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("consumed %d bytes, want 8", n)
	}
	if diff := cmp.Diff(Dict{"a": Int(1)}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if string(data[n:]) != "<rest>" {
		t.Errorf("rest = %q", data[n:])
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	data := []byte("4:spam")
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	copy(data, "4:eggs")
	if got != Str("spam") {
		t.Errorf("decoded value changed with input: %q", got)
	}
}

func TestParseErrorMessage(t *testing.T) {
	_, err := DecodeBencode("i1x")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"unexpected token", "offset 2", "'e' closing integer", `'x'`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %q", msg, want)
		}
	}
}

func TestDecodeDeepNesting(t *testing.T) {
	const depth = 10000
	input := strings.Repeat("l", depth) + strings.Repeat("e", depth)
	v, err := DecodeBencode(input)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(Encode(v)); got != input {
		t.Errorf("re-encoding deep list changed it")
	}
}
