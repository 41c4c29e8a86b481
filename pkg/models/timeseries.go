package models

import (
	"math"
	"time"
)

// DataPoint represents a single observation in a time series
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TimeSeries represents a univariate time series to be modeled
type TimeSeries struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Frequency  string      `json:"frequency,omitempty"`
	DataPoints []DataPoint `json:"data_points"`
}

// NewTimeSeries builds a series from raw values. Timestamps are synthetic,
// spaced by the given step starting at start.
func NewTimeSeries(id string, values []float64, start time.Time, step time.Duration) *TimeSeries {
	points := make([]DataPoint, len(values))
	current := start
	for i, v := range values {
		points[i] = DataPoint{Timestamp: current, Value: v}
		current = current.Add(step)
	}
	return &TimeSeries{
		ID:         id,
		DataPoints: points,
	}
}

// Len returns the number of observations
func (ts *TimeSeries) Len() int {
	return len(ts.DataPoints)
}

// Values extracts the observation values in order
func (ts *TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.DataPoints))
	for i, dp := range ts.DataPoints {
		values[i] = dp.Value
	}
	return values
}

// AllPositive reports whether every observation is strictly positive.
// Box-Cox transformation is only defined for positive data.
func (ts *TimeSeries) AllPositive() bool {
	for _, dp := range ts.DataPoints {
		if dp.Value <= 0 {
			return false
		}
	}
	return true
}

// HasMissing reports whether any observation is NaN or infinite
func (ts *TimeSeries) HasMissing() bool {
	for _, dp := range ts.DataPoints {
		if math.IsNaN(dp.Value) || math.IsInf(dp.Value, 0) {
			return true
		}
	}
	return false
}
