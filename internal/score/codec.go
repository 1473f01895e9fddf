// Package score implements the obfuscated run-time encoding sent with a
// completed map and its server-side decode and validation.
//
// The constants are part of the wire protocol shared with browser clients
// and must not be simplified.
package score

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Offset is added to every transmitted field except the encoded time.
const Offset = 0xc79d8b

var (
	addendsFwd = [3]int64{0xc79d8b, 0xc7a2c4, 0xc8419b}
	addendsRev = [3]int64{0xc8419b, 0xc7a2c4, 0xc79d8b}
)

// Both evaluate to zero.
const (
	const1 = (0x2a01c0d7cc & 0x7f) - 0x4c
	const2 = (0x29a << 15) - 0x14d0000
)

// Shift and addend index ranges drawn by the encoder.
const (
	MinShift  = 1
	MaxShift  = 3
	AddendMax = 2
)

// MaxTime is the longest run in ms whose fields stay inside the signed
// 32-bit range browser clients shift in.
const MaxTime = 31709526

// ErrTimeRange is returned when a time cannot be encoded.
var ErrTimeRange = errors.New("score: time out of range")

// Field is one transmitted integer. Set is false when it was absent.
type Field struct {
	V   int64
	Set bool
}

// Int returns a present field.
func Int(v int64) Field {
	return Field{V: v, Set: true}
}

// Tuple is the four transmitted fields.
//
//	A  shift + Offset
//	B  reversed addend index + Offset
//	C  encoded time
//	D  (C << 3) + Offset, the check field
type Tuple struct {
	A, B, C, D Field
}

// Complete reports whether all four fields are present.
func (t Tuple) Complete() bool {
	return t.A.Set && t.B.Set && t.C.Set && t.D.Set
}

// RNG is the randomness the encoder draws a and b from.
// *rand.Rand from math/rand/v2 satisfies it.
type RNG interface {
	IntN(n int) int
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int { return rand.IntN(n) }

// Encode encodes elapsed time t (ms) with a random shift and addend.
// A nil rng uses the global source.
func Encode(t int64, rng RNG) (Tuple, error) {
	if rng == nil {
		rng = globalRNG{}
	}
	a := rng.IntN(MaxShift) + MinShift
	b := rng.IntN(AddendMax + 1)
	return EncodeWith(t, a, b)
}

// EncodeWith encodes t with an explicit shift a in [1,3] and addend index
// b in [0,2].
func EncodeWith(t int64, a, b int) (Tuple, error) {
	if t < 1 || t > MaxTime {
		return Tuple{}, fmt.Errorf("%w: %d ms", ErrTimeRange, t)
	}
	if a < MinShift || a > MaxShift {
		return Tuple{}, fmt.Errorf("score: shift %d outside [%d,%d]", a, MinShift, MaxShift)
	}
	if b < 0 || b > AddendMax {
		return Tuple{}, fmt.Errorf("score: addend index %d outside [0,%d]", b, AddendMax)
	}

	addend := addendsFwd[b]
	fieldB := int64((0x02<<15)-0xfffe-b) + Offset
	encoded := const1 + (t << a) + addend + const2
	fieldD := (encoded << 3) + Offset
	fieldA := int64(a) + Offset

	return Tuple{A: Int(fieldA), B: Int(fieldB), C: Int(encoded), D: Int(fieldD)}, nil
}

// Rejection reasons reported by Check.
const (
	RejectMissing = "missing field"
	RejectShift   = "shift out of range"
	RejectAddend  = "addend index out of range"
	RejectCheck   = "check field mismatch"
	RejectTime    = "decoded time below 1"
)

// Check decodes t and returns the run time in ms, or the reason it was
// rejected. An empty reason means the tuple is valid.
func Check(t Tuple) (int64, string) {
	if !t.Complete() {
		return 0, RejectMissing
	}
	shift := t.A.V - Offset
	index := t.B.V - Offset
	check := t.D.V - Offset

	if shift < 0 || shift > MaxShift {
		return 0, RejectShift
	}
	if index < 0 || index > AddendMax {
		return 0, RejectAddend
	}

	decoded := (t.C.V - addendsRev[index]) >> shift
	if check>>3 != t.C.V {
		return decoded, RejectCheck
	}
	if decoded < 1 {
		return decoded, RejectTime
	}
	return decoded, ""
}

// Decode returns the run time carried by t and whether t is valid.
func Decode(t Tuple) (int64, bool) {
	ms, reason := Check(t)
	if reason != "" {
		return 0, false
	}
	return ms, true
}
