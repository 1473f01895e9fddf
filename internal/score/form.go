package score

import (
	"net/url"
	"strconv"
)

// Form field names of the submission body.
const (
	FieldA = "a"
	FieldB = "b"
	FieldC = "c"
	FieldD = "d"
)

// Values returns the tuple as an application/x-www-form-urlencoded body.
// Absent fields are omitted.
func (t Tuple) Values() url.Values {
	v := url.Values{}
	put := func(name string, f Field) {
		if f.Set {
			v.Set(name, strconv.FormatInt(f.V, 10))
		}
	}
	put(FieldA, t.A)
	put(FieldB, t.B)
	put(FieldC, t.C)
	put(FieldD, t.D)
	return v
}

// ParseValues reads a tuple from form values. A field that is missing or
// not an integer is left unset, which Decode rejects.
func ParseValues(v url.Values) Tuple {
	get := func(name string) Field {
		s := v.Get(name)
		if s == "" {
			return Field{}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Field{}
		}
		return Int(n)
	}
	return Tuple{
		A: get(FieldA),
		B: get(FieldB),
		C: get(FieldC),
		D: get(FieldD),
	}
}
