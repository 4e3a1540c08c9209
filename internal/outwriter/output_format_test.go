package outwriter

import (
	"testing"
	"time"

	"github.com/huangsam/leadtime/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{name: "zero", in: 0, want: "00:00:00"},
		{name: "minutes", in: 3*time.Hour + 42*time.Minute + 5*time.Second, want: "03:42:05"},
		{name: "past a day", in: 27*time.Hour + time.Minute, want: "27:01:00"},
		{name: "negative", in: -(90 * time.Second), want: "-00:01:30"},
		{name: "sub-second truncated", in: 1500 * time.Millisecond, want: "00:00:01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatClock(tt.in))
		})
	}
}

func TestFormatStepAndDeviation(t *testing.T) {
	assert.Equal(t, "+000", formatStep(0))
	assert.Equal(t, "+120", formatStep(120))
	assert.Equal(t, "-", formatDeviation(0))
	assert.Equal(t, "+00:05:00", formatDeviation(5*time.Minute))
	assert.Equal(t, "-00:05:00", formatDeviation(-5*time.Minute))
}

func TestPaintWithoutColors(t *testing.T) {
	plain := paint(&contract.Config{UseColors: false})
	assert.Equal(t, "late", plain("late"))
}

func TestGetMaxGridColumns(t *testing.T) {
	assert.Equal(t, 6, getMaxGridColumns(&contract.Config{Width: 80}))
	assert.Equal(t, 1, getMaxGridColumns(&contract.Config{Width: 10}))
	assert.Equal(t, 16, getMaxGridColumns(&contract.Config{Width: 190}))
}
