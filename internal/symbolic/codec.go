package symbolic

import "github.com/philgrim2/scriptsym/internal/script"

// Bool implements the byte-string boolean codec of spec.md §4.1: the
// standard minimal-cast truthiness rule (all-zero, possibly with a trailing
// negative-zero sign byte, is false).
var Bool boolCodec

type boolCodec struct{}

// TrueBytes / FalseBytes are the canonical boolean push encodings.
var (
	TrueBytes  = []byte{0x01}
	FalseBytes = []byte{}
)

// Decode returns the minimal-cast truth value of b.
func (boolCodec) Decode(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for i, c := range b {
		if c != 0 {
			// Negative zero: last byte is 0x80 and every other byte is 0.
			if i == len(b)-1 && c == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// Encode returns the canonical byte encoding of v.
func (boolCodec) Encode(v bool) []byte {
	if v {
		return append([]byte(nil), TrueBytes...)
	}
	return append([]byte(nil), FalseBytes...)
}

// Not returns Encode(!Decode(b)).
func (boolCodec) Not(b []byte) []byte {
	return Bool.Encode(!Bool.Decode(b))
}

// Int implements the sign-magnitude little-endian script-number codec of
// spec.md §4.1.
var Int intCodec

type intCodec struct{}

// Decode interprets b as a sign-magnitude little-endian integer. It fails
// NUM_OVERFLOW for inputs longer than 4 bytes, per spec.md's executor-level
// decode bound.
func (intCodec) Decode(b []byte) (int64, error) {
	if len(b) > 4 {
		return 0, script.NewError(script.ErrNumOverflow, "script number overflows 4 bytes")
	}
	if len(b) == 0 {
		return 0, nil
	}

	var result int64
	for i, c := range b {
		result |= int64(c) << uint(8*i)
	}

	// Top bit of the last byte is the sign.
	if b[len(b)-1]&0x80 != 0 {
		// Clear the sign bit from the magnitude and negate.
		result &^= int64(0x80) << uint(8*(len(b)-1))
		result = -result
	}
	return result, nil
}

// Encode is the inverse of Decode: minimal-length little-endian magnitude,
// with an extra 0x00/0x80 byte appended when the magnitude's own top bit
// would otherwise collide with the sign bit.
func (intCodec) Encode(n int64) []byte {
	if n == 0 {
		return []byte{}
	}

	neg := n < 0
	abs := n
	if neg {
		abs = -abs
	}

	var result []byte
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		if neg {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if neg {
		result[len(result)-1] |= 0x80
	}

	return result
}
