package schema

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatISODuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "P0DT0H0M0S"},
		{5 * time.Minute, "P0DT0H5M0S"},
		{time.Hour + 23*time.Minute + 45*time.Second, "P0DT1H23M45S"},
		{26*time.Hour + time.Second, "P1DT2H0M1S"},
		{10*time.Second + 500*time.Millisecond, "P0DT0H0M10.5S"},
		{-90 * time.Second, "-P0DT0H1M30S"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatISODuration(tt.in))
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "P0DT0H5M0S", want: 5 * time.Minute},
		{in: "P1DT2H0M1S", want: 26*time.Hour + time.Second},
		{in: "PT45M", want: 45 * time.Minute},
		{in: "P1W", want: 7 * 24 * time.Hour},
		{in: "P0DT0H0M10.25S", want: 10*time.Second + 250*time.Millisecond},
		{in: "-P0DT0H1M30S", want: -90 * time.Second},
		{in: "P1M", wantErr: true},
		{in: "P", wantErr: true},
		{in: "PT", wantErr: true},
		{in: "5 minutes", wantErr: true},
		{in: "P106751DT23H47M16.854775807S", want: time.Duration(math.MaxInt64)},
		{in: "P106752D", wantErr: true},
		{in: "P15250285W", wantErr: true},
		{in: "P106751DT24H", wantErr: true},
		{in: "PT9223372037S", wantErr: true},
		{in: "P99999999999999999999D", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISODuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardTimesConversion(t *testing.T) {
	results := []ProductionTimeResult{
		{
			StartHour: "00",
			Times: []ConfidenceBound{
				{ForecastHour: 6, Lower: 4 * time.Hour, Upper: 4*time.Hour + 10*time.Minute},
				{ForecastHour: 0, Lower: 3 * time.Hour, Upper: 3*time.Hour + 30*time.Second},
			},
		},
	}

	entries := ToStandardTimes(results)
	require.Len(t, entries, 1)
	assert.Equal(t, "00", entries[0].StartHour)
	assert.Equal(t, []StandardTime{
		{ForecastHour: 6, UpperDuration: "P0DT4H10M0S", LowerDuration: "P0DT4H0M0S"},
		{ForecastHour: 0, UpperDuration: "P0DT3H0M30S", LowerDuration: "P0DT3H0M0S"},
	}, entries[0].Times)

	parsed, err := FromStandardTimes(entries)
	require.NoError(t, err)
	assert.Equal(t, results, parsed)

	found, ok := FindBounds(parsed, "00")
	assert.True(t, ok)
	assert.Equal(t, 6, found.Times[0].ForecastHour)
	_, ok = FindBounds(parsed, "12")
	assert.False(t, ok)
}
