package nor

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Padding bytes of string fields.
const (
	PadZero   = 0x00
	PadErased = 0xFF
)

// DecodeASCII strips trailing padding and decodes the rest as Latin-1.
// Every byte maps to exactly one rune, so decoding never fails.
func DecodeASCII(data []byte) string {
	end := len(data)
	for end > 0 && (data[end-1] == PadZero || data[end-1] == PadErased) {
		end--
	}

	var sb strings.Builder
	sb.Grow(end)
	for _, b := range data[:end] {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// EncodeASCII encodes value as Latin-1 and right-pads it with 0x00 to length.
// Runes above U+00FF are rejected with ErrInvalidArgument, and values longer
// than length with a *ValueTooLongError.
func EncodeASCII(value string, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	for _, r := range value {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: character %q cannot be encoded as Latin-1", ErrInvalidArgument, r)
		}
		out = append(out, byte(r))
	}

	if len(out) > length {
		return nil, &ValueTooLongError{Length: len(out), Max: length}
	}

	for len(out) < length {
		out = append(out, PadZero)
	}
	return out, nil
}

// EncodeField encodes value for an ASCII field, naming the field in errors.
func EncodeField(f Field, value string) ([]byte, error) {
	if f.Kind != KindASCII {
		return nil, fmt.Errorf("%w: field %s is not writable as text", ErrInvalidArgument, f.Name)
	}

	data, err := EncodeASCII(value, f.Length)
	if err != nil {
		if tooLong, ok := err.(*ValueTooLongError); ok {
			tooLong.Field = f.Name
		}
		return nil, err
	}
	return data, nil
}

// DecodeHex renders data as uppercase hex without separators.
func DecodeHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}
