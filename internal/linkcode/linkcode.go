// Package linkcode encodes file-record identifiers into short opaque
// strings usable unescaped in a share-link query parameter, and back.
//
// The encoding is an obfuscation convenience, not a security boundary:
// access control is handled by the join gate and record existence checks.
package linkcode

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// ErrMalformed is returned by Decode for any input not produced by Encode.
var ErrMalformed = errors.New("linkcode: malformed payload")

// maxPayloadLen bounds Decode input. An int64 is at most 19 digits,
// which base64 expands to 28 characters; anything longer is garbage.
const maxPayloadLen = 28

// Encode returns the opaque form of a file-record id. Callers must pass
// a positive id; Decode rejects anything else.
func Encode(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

// Decode reverses Encode. It returns ErrMalformed for bad base64,
// non-numeric content, non-positive values, and oversized input —
// never a panic.
func Decode(payload string) (int64, error) {
	if payload == "" || len(payload) > maxPayloadLen {
		return 0, ErrMalformed
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return 0, ErrMalformed
	}

	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformed
	}

	return id, nil
}
