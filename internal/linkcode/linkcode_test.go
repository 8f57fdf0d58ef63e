package linkcode

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 9, 10, 99, 1234, 987654321, math.MaxInt64}
	for _, id := range ids {
		got, err := Decode(Encode(id))
		if err != nil {
			t.Fatalf("Decode(Encode(%d)) error: %v", id, err)
		}
		if got != id {
			t.Errorf("Decode(Encode(%d)) = %d", id, got)
		}
	}
}

func TestEncode_URLSafe(t *testing.T) {
	t.Parallel()

	for _, id := range []int64{1, 1000, math.MaxInt64} {
		enc := Encode(id)
		if strings.ContainsAny(enc, "+/=?&# ") {
			t.Errorf("Encode(%d) = %q contains URL-unsafe characters", id, enc)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"!!!not-base64!!!",
		Encode(1) + "x" + Encode(1),                // too long, also bad digits
		"aGVsbG8",                                  // "hello" — not numeric
		"LTU",                                      // "-5" — negative
		"MA",                                       // "0" — not positive
		strings.Repeat("A", maxPayloadLen+1),       // oversized
		"OTk5OTk5OTk5OTk5OTk5OTk5OTk5OTk5OTk5OTk",  // digits overflowing int64
	}
	for _, in := range inputs {
		if _, err := Decode(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}
