package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is written in place of an absent IMDb rating.
const NotAvailable = "N/A"

// Rating is an optional score on the 0-10 scale.
type Rating struct {
	Value float64
	Valid bool
}

// NewRating returns a present rating rounded to one decimal place.
func NewRating(value float64) Rating {
	return Rating{Value: math.Round(value*10) / 10, Valid: true}
}

func (r Rating) String() string {
	if !r.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(r.Value, 'f', 1, 64)
}

// MarshalJSON writes the score as a number, or "N/A" when absent.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return json.Marshal(NotAvailable)
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', 1, 64)), nil
}

// UnmarshalJSON accepts numbers, numeric strings, "N/A", and null.
func (r *Rating) UnmarshalJSON(data []byte) error {
	*r = Rating{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, NotAvailable) {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("rating %q: %w", raw, err)
	}
	if value > 0 {
		*r = NewRating(value)
	}
	return nil
}

// Score is a rating that is always written as a number, zero when unknown.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(s), 'f', 1, 64)), nil
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var r Rating
	if err := r.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = Score(r.Value)
	return nil
}
