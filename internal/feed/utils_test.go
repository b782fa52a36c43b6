package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"29950.01", 29950.01, false},
		{"0.00000100", 0.000001, false},
		{"", 0, false},
		{"1e3", 1000, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDecimalFieldsNamesTheBadField(t *testing.T) {
	_, err := DecimalFields(map[string]string{"bid": "1", "ask": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask")
}

func TestMillisToTime(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), MillisToTime(1704067200000))
}
