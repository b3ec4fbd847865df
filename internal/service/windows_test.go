package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWindows(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		days  int
		want  []Window
	}{
		{
			name:  "single short window",
			start: day(11, 1),
			end:   day(11, 5),
			days:  30,
			want:  []Window{{From: day(11, 1), To: day(11, 5)}},
		},
		{
			name:  "exactly one full window",
			start: day(1, 1),
			end:   day(1, 31),
			days:  30,
			want:  []Window{{From: day(1, 1), To: day(1, 31)}},
		},
		{
			name:  "two windows step past the boundary",
			start: day(1, 1),
			end:   day(3, 1),
			days:  30,
			want: []Window{
				{From: day(1, 1), To: day(1, 31)},
				{From: day(1, 31).Add(WindowStep), To: day(3, 1)},
			},
		},
		{
			name:  "empty range",
			start: day(5, 1),
			end:   day(5, 1),
			days:  30,
			want:  nil,
		},
		{
			name:  "non-positive days uses default",
			start: day(1, 1),
			end:   day(1, 20),
			days:  0,
			want:  []Window{{From: day(1, 1), To: day(1, 20)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitWindows(tt.start, tt.end, tt.days))
		})
	}
}

func TestSplitWindows_Properties(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)
	start := time.Date(2023, 2, 14, 9, 30, 0, 0, cairo)
	end := time.Date(2024, 8, 3, 17, 45, 12, 0, cairo)

	windows := SplitWindows(start, end, 30)
	require.NotEmpty(t, windows)

	assert.Equal(t, start.UTC(), windows[0].From)
	assert.Equal(t, end.UTC(), windows[len(windows)-1].To)
	for i, w := range windows {
		assert.Equal(t, time.UTC, w.From.Location())
		assert.True(t, w.From.Before(w.To) || w.From.Equal(w.To))
		assert.False(t, w.To.After(w.From.AddDate(0, 0, 30)), "window %d wider than 30 days", i)
		if i > 0 {
			assert.Equal(t, windows[i-1].To.Add(WindowStep), w.From)
		}
	}
}
