package schema

import "time"

// CheckResult holds the outcome of a delay check for one cycle.
type CheckResult struct {
	Passed    bool                `json:"passed"`
	Cycle     time.Time           `json:"cycle"`
	StartHour string              `json:"start_hour"`
	CheckedAt time.Time           `json:"checked_at"`
	Items     []CheckItem         `json:"items"`
	Counts    map[DelayStatus]int `json:"counts"`
}

// CheckItem is the delay classification of one forecast hour.
type CheckItem struct {
	ForecastHour int           `json:"forecast_hour"`
	Status       DelayStatus   `json:"status"`
	Arrival      *time.Time    `json:"arrival,omitempty"`
	Clock        time.Duration `json:"clock"` // Arrival clock, or elapsed time when no arrival
	Lower        time.Duration `json:"lower"`
	Upper        time.Duration `json:"upper"`
	Deviation    time.Duration `json:"deviation"` // Distance outside the window, zero when inside
}
