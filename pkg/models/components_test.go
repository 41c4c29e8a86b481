package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		input    string
		expected Switch
	}{
		{"auto", SwitchAuto},
		{"", SwitchAuto},
		{"search", SwitchAuto},
		{"on", SwitchOn},
		{"TRUE", SwitchOn},
		{"yes", SwitchOn},
		{"1", SwitchOn},
		{"off", SwitchOff},
		{"False", SwitchOff},
		{"0", SwitchOff},
		{" on ", SwitchOn},
	}
	for _, tt := range tests {
		s, err := ParseSwitch(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, s, "input %q", tt.input)
	}

	_, err := ParseSwitch("maybe")
	assert.Error(t, err)
}

func TestSwitchCandidatesOrder(t *testing.T) {
	assert.Equal(t, []bool{false, true}, SwitchAuto.Candidates())
	assert.Equal(t, []bool{true}, SwitchOn.Candidates())
	assert.Equal(t, []bool{false}, SwitchOff.Candidates())
}

func TestComponentSpecString(t *testing.T) {
	assert.Equal(t, "level-only", ComponentSpec{}.String())
	assert.Equal(t, "boxcox+trend+damped+arma",
		ComponentSpec{UseBoxCox: true, UseTrend: true, UseDampedTrend: true, UseARMAErrors: true}.String())
	assert.Equal(t, "trend, seasonal=[12 168]",
		ComponentSpec{UseTrend: true, SeasonalPeriods: []int{12, 168}}.String())
}

func TestComponentSpecEqual(t *testing.T) {
	a := ComponentSpec{UseTrend: true, SeasonalPeriods: []int{12}}
	b := ComponentSpec{UseTrend: true, SeasonalPeriods: []int{12}}
	c := ComponentSpec{UseTrend: true, SeasonalPeriods: []int{24}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(ComponentSpec{UseTrend: true}))
}

func TestParamCount(t *testing.T) {
	levelOnly := &FittedModel{SeedState: []float64{10}}
	// alpha + variance + seed state
	assert.Equal(t, 3, levelOnly.ParamCount())

	full := &FittedModel{
		Spec: ComponentSpec{
			UseBoxCox:      true,
			UseTrend:       true,
			UseDampedTrend: true,
		},
		Gammas:    []float64{0.01},
		ARCoeffs:  []float64{0.2},
		MACoeffs:  []float64{0.1},
		SeedState: make([]float64, 14),
	}
	// alpha, beta, phi, gamma, ar, ma, variance, lambda, 14 seed states
	assert.Equal(t, 22, full.ParamCount())
}

func TestIsViable(t *testing.T) {
	assert.True(t, (&FittedModel{AIC: 123.4}).IsViable())
	assert.False(t, (&FittedModel{AIC: math.NaN()}).IsViable())
	assert.False(t, (&FittedModel{AIC: math.Inf(1)}).IsViable())
	assert.False(t, (*FittedModel)(nil).IsViable())
}
