package property

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number coerces a raw source value into a float64. Anything that is not a
// finite number (missing, blank, garbage, NaN, ±Inf) becomes 0.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text coerces a raw source value into an optional string. Missing and blank
// values become nil.
func Text(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

var dateLayouts = []string{
	"2006-01-02",
	"01-02-2006",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Date coerces a raw source date into ISO form (2006-01-02) so that string
// comparison orders dates. Values that do not parse are kept as given.
func Date(v any) *string {
	s := Text(v)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return s
}
