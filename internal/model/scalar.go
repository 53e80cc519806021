package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ID is an upstream identifier. The source sends some ids as strings and
// some as numbers; ID re-encodes whichever form it was decoded from.
type ID struct {
	value   string
	numeric bool
}

// StringID returns an ID encoded as a JSON string.
func StringID(s string) ID { return ID{value: s} }

// NumericID returns an ID encoded as a JSON number.
func NumericID(n int64) ID { return ID{value: strconv.FormatInt(n, 10), numeric: true} }

func (id ID) String() string { return id.value }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id.value == "" }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a string or a number. Any other kind decodes to the
// zero ID so the surrounding document keeps decoding.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*id = ID{}
	if len(data) == 0 {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*id = ID{value: s}
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID{value: n.String(), numeric: true}
	}
	return nil
}

// Count is a non-negative number the source may send as a number or a
// numeric string. Values are clamped to [0, math.MaxInt64]; anything that is
// not a number decodes to zero.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = Count(max(n, 0))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange), math.IsNaN(f), f <= 0:
	case f >= math.MaxInt64:
		*c = math.MaxInt64
	default:
		*c = Count(f)
	}
	return nil
}

// Flag is a boolean the source may send as true/false, 0/1 or a string
// form of either.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	switch s {
	case "true", "1", "yes", "y":
		*f = true
	default:
		*f = false
	}
	return nil
}
