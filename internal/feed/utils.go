package feed

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDecimal reads a venue price or size string. Empty strings are zero.
func ParseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("bad decimal %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// DecimalFields parses several strings at once, stopping at the first bad one.
func DecimalFields(fields map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(fields))
	for name, raw := range fields {
		v, err := ParseDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
