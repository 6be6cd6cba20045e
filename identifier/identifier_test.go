// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package identifier

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	created := time.UnixMilli(1700000000000)
	assert.Equal(t, "B0-123456789-1700000000000", Format(123456789, created))
}

func TestGenerator(t *testing.T) {
	require := require.New(t)
	now := time.UnixMilli(1700000000000)
	g := NewGenerator()

	for i := 0; i < 100; i++ {
		v := g.Generate(now)
		require.True(Valid(v), v)

		parts := strings.Split(v, "-")
		require.Len(parts, 3)
		n, err := strconv.ParseInt(parts[1], 10, 64)
		require.NoError(err)
		require.GreaterOrEqual(n, int64(0))
		require.LessOrEqual(n, int64(2147483647))
		require.Equal("1700000000000", parts[2])
	}
}

func TestValid(t *testing.T) {
	tcs := []struct {
		Description string
		Value       string
		Expected    bool
	}{
		{Description: "Generated", Value: "B0-1-2", Expected: true},
		{Description: "Foreign prefix", Value: "P0-TestFPA", Expected: false},
		{Description: "Missing timestamp", Value: "B0-123", Expected: false},
		{Description: "Non numeric", Value: "B0-abc-123", Expected: false},
		{Description: "Empty", Value: "", Expected: false},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert.Equal(t, tc.Expected, Valid(tc.Value))
		})
	}
}

func TestTimestamp(t *testing.T) {
	assert := assert.New(t)
	ts, ok := Timestamp("B0-42-1700000000000")
	assert.True(ok)
	assert.Equal(int64(1700000000000), ts.UnixMilli())

	_, ok = Timestamp("P0-TestFPA")
	assert.False(ok)
}

func TestDefaultExpiry(t *testing.T) {
	assert.Equal(t, int64(33868800000), DefaultExpiry.Milliseconds())
}
