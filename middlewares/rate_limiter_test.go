package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	cases := []struct {
		in     string
		limit  int64
		period time.Duration
	}{
		{"10-2m", 10, 2 * time.Minute},
		{"5-1h", 5, time.Hour},
		{"20-30s", 20, 30 * time.Second},
		{"120-1m", 120, time.Minute},
	}

	for _, tc := range cases {
		rate, err := ParseCustomRate(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.limit, rate.Limit, tc.in)
		assert.Equal(t, tc.period, rate.Period, tc.in)
	}
}

func TestParseCustomRateRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "10", "10-2d", "ten-2m", "10-xm", "10-2m-3s"} {
		_, err := ParseCustomRate(in)
		assert.Error(t, err, in)
	}
}
