package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlots(t *testing.T) {
	slots, err := ParseSlots([]string{"12:05", " 00:05", "12:05"})
	require.NoError(t, err)
	assert.Equal(t, []Slot{{0, 5}, {12, 5}}, slots)
	assert.Equal(t, "00:05", slots[0].String())

	for _, bad := range [][]string{nil, {"24:00"}, {"7"}, {"12:5x"}} {
		_, err := ParseSlots(bad)
		assert.Error(t, err, bad)
	}
}

func TestNext(t *testing.T) {
	slots := []Slot{{0, 5}, {12, 5}}
	day := func(d, h, m int) time.Time { return time.Date(2025, 3, d, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before first", day(15, 0, 0), day(15, 0, 5)},
		{"exactly at a slot", day(15, 0, 5), day(15, 12, 5)},
		{"between", day(15, 9, 30), day(15, 12, 5)},
		{"after last rolls over", day(15, 18, 0), day(16, 0, 5)},
		{"end of month", day(31, 23, 59), time.Date(2025, 4, 1, 0, 5, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.now, slots, time.UTC))
		})
	}
}

func TestNext_UsesLocation(t *testing.T) {
	riga := time.FixedZone("EET", 2*60*60)
	now := time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC) // 23:00 local

	got := Next(now, []Slot{{0, 5}}, riga)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 5, 0, 0, riga), got)
	assert.True(t, got.Equal(time.Date(2025, 3, 15, 22, 5, 0, 0, time.UTC)))
}

func TestRetryPolicy_Backoff(t *testing.T) {
	b := RetryPolicy{Base: time.Second, Cap: 3 * time.Second, MaxRetries: 4}.backoff()

	var got []time.Duration
	for {
		d, stop := b.Next()
		if stop {
			break
		}
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}, got)
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{MaxRetries: 1}.withDefaults()
	assert.Equal(t, 30*time.Second, p.Base)
	assert.Equal(t, 30*time.Minute, p.Cap)
	assert.Equal(t, uint64(1), p.MaxRetries)
}
