package dataset

import (
	"encoding/json"
	"math"
)

// NullFloat64 is a float64 that may be missing. The zero value is missing.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Float returns a present value. NaN is treated as missing.
func Float(v float64) NullFloat64 {
	if math.IsNaN(v) {
		return NullFloat64{}
	}
	return NullFloat64{Float64: v, Valid: true}
}

// MarshalJSON encodes a missing value as null.
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// NullString is a string that may be missing. The zero value is missing.
type NullString struct {
	String string
	Valid  bool
}

// Text returns a present value.
func Text(s string) NullString {
	return NullString{String: s, Valid: true}
}

// MarshalJSON encodes a missing value as null.
func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}
