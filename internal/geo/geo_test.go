package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	a := NewPosition(0, 0, 0)
	b := NewPosition(0, 0, 1000)
	require.InDelta(t, 1000.0, Distance(a, b), 1e-9)
}

func TestInterpolate(t *testing.T) {
	a := NewPosition(0, 0, 0)
	b := NewPosition(0, 0, 1000)

	mid := Interpolate(a, b, 0.5)
	require.InDelta(t, 500.0, mid.Z(), 1e-9)

	start := Interpolate(a, b, 0)
	require.True(t, start.Equal(a))

	end := Interpolate(a, b, 1)
	require.True(t, end.Equal(b))
}

func TestRoundToSeconds(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want time.Duration
	}{
		{500 * time.Millisecond, time.Second},
		{499 * time.Millisecond, 0},
		{1500 * time.Millisecond, 2 * time.Second},
		{-500 * time.Millisecond, -time.Second},
	}
	for _, c := range cases {
		require.Equal(t, c.want, RoundToSeconds(c.in))
	}
}
