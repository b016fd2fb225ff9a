package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// Number is a value that may be absent. A zero Number is absent.
type Number struct {
	Value float64
	Valid bool
}

func Some(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

func None() Number {
	return Number{}
}

// IsZero reports whether the number is absent or exactly zero
func (n Number) IsZero() bool {
	return !n.Valid || n.Value == 0
}

func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Number{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}
