package duedate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeText_Parse(t *testing.T) {
	f := NewFreeText(time.UTC)
	now := time.Date(2024, 5, 8, 17, 45, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		text string
		want time.Time
	}{
		{"do it today", time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)},
		{"Tomorrow morning", time.Date(2024, 5, 9, 9, 0, 0, 0, time.UTC)},
		{"sometime next week", time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)},
		{"by friday", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)},
		{"wednesday sync", time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)},
		{"monday or friday", time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := f.Parse(tt.text, now)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestFreeText_NoMatch(t *testing.T) {
	f := NewFreeText(nil)
	for _, text := range []string{"", "send the report", "end of quarter"} {
		_, ok := f.Parse(text, time.Now())
		assert.False(t, ok, text)
	}
}

func TestFreeText_NextWeekOnlyKnownHere(t *testing.T) {
	now := time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)

	_, ok := NewResolver(time.UTC).Resolve("next week", now)
	assert.False(t, ok)

	_, ok = NewFreeText(time.UTC).Parse("next week", now)
	assert.True(t, ok)
}

func TestFreeText_AtStartHour(t *testing.T) {
	f := NewFreeText(time.UTC)

	got, err := f.AtStartHour("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "20240510T090000Z", got.UTC().Format("20060102T150405Z"))

	_, err = f.AtStartHour("10-05-2024")
	assert.Error(t, err)

	_, err = f.AtStartHour("2024-13-40")
	assert.Error(t, err)
}
