package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Switch is a tri-state model component toggle. A switch can force a
// component on or off, or leave it to the model selection search.
type Switch int

const (
	// SwitchAuto means both the enabled and disabled variants are fitted
	// and the better one is kept by AIC.
	SwitchAuto Switch = iota
	SwitchOn
	SwitchOff
)

// String implements fmt.Stringer
func (s Switch) String() string {
	switch s {
	case SwitchOn:
		return "on"
	case SwitchOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseSwitch parses a switch from its textual form ("on", "off", "auto",
// plus the usual boolean spellings accepted by CLI flags and config files).
func ParseSwitch(value string) (Switch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto", "search":
		return SwitchAuto, nil
	case "on", "true", "yes", "1":
		return SwitchOn, nil
	case "off", "false", "no", "0":
		return SwitchOff, nil
	default:
		return SwitchAuto, fmt.Errorf("invalid switch value %q", value)
	}
}

// Candidates returns the concrete boolean values the switch expands to
// in grid order. A fixed switch yields a single value; an auto switch
// yields the disabled variant first, then the enabled one.
func (s Switch) Candidates() []bool {
	switch s {
	case SwitchOn:
		return []bool{true}
	case SwitchOff:
		return []bool{false}
	default:
		return []bool{false, true}
	}
}

// ComponentSwitches is the user-facing, possibly partial specification of
// which model components to use. Free (auto) switches are searched over.
type ComponentSwitches struct {
	UseBoxCox      Switch `json:"use_box_cox"`
	UseTrend       Switch `json:"use_trend"`
	UseDampedTrend Switch `json:"use_damped_trend"`
	UseARMAErrors  Switch `json:"use_arma_errors"`
}

// ComponentSpec is one concrete model configuration produced by grid
// expansion. It is immutable and consumed by exactly one fit attempt.
type ComponentSpec struct {
	UseBoxCox       bool  `json:"use_box_cox"`
	UseTrend        bool  `json:"use_trend"`
	UseDampedTrend  bool  `json:"use_damped_trend"`
	UseARMAErrors   bool  `json:"use_arma_errors"`
	SeasonalPeriods []int `json:"seasonal_periods,omitempty"`
}

// String renders a compact description like "boxcox+trend+damped, seasonal=[12 168]"
func (s ComponentSpec) String() string {
	var parts []string
	if s.UseBoxCox {
		parts = append(parts, "boxcox")
	}
	if s.UseTrend {
		parts = append(parts, "trend")
	}
	if s.UseDampedTrend {
		parts = append(parts, "damped")
	}
	if s.UseARMAErrors {
		parts = append(parts, "arma")
	}
	if len(parts) == 0 {
		parts = append(parts, "level-only")
	}
	desc := strings.Join(parts, "+")
	if len(s.SeasonalPeriods) > 0 {
		periods := make([]string, len(s.SeasonalPeriods))
		for i, p := range s.SeasonalPeriods {
			periods[i] = strconv.Itoa(p)
		}
		desc += ", seasonal=[" + strings.Join(periods, " ") + "]"
	}
	return desc
}

// MaxSeasonalPeriod returns the longest seasonal period, or 0 for a
// non-seasonal spec.
func (s ComponentSpec) MaxSeasonalPeriod() int {
	max := 0
	for _, p := range s.SeasonalPeriods {
		if p > max {
			max = p
		}
	}
	return max
}

// Equal reports whether two specs describe the same configuration
func (s ComponentSpec) Equal(other ComponentSpec) bool {
	if s.UseBoxCox != other.UseBoxCox ||
		s.UseTrend != other.UseTrend ||
		s.UseDampedTrend != other.UseDampedTrend ||
		s.UseARMAErrors != other.UseARMAErrors {
		return false
	}
	if len(s.SeasonalPeriods) != len(other.SeasonalPeriods) {
		return false
	}
	for i, p := range s.SeasonalPeriods {
		if other.SeasonalPeriods[i] != p {
			return false
		}
	}
	return true
}
