package quill

import (
	"fmt"
	"math"
	"sort"

	"github.com/tanema/gween/ease"
)

// RateFunc remaps normalized animation time. Shipped functions map 0 to 0
// and, except ThereAndBack, 1 to 1.
type RateFunc func(t float64) float64

// smoothInflection is the steepness of the Smooth sigmoid.
const smoothInflection = 10.0

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Linear is the identity rate function.
func Linear(t float64) float64 { return t }

// Smooth is a sigmoid ease-in-out rescaled to pass exactly through 0 and 1.
// It is the default rate function of most animations.
func Smooth(t float64) float64 {
	t = clamp01(t)
	switch t {
	case 0, 1:
		return t
	}
	e := sigmoid(-smoothInflection / 2)
	return (sigmoid(smoothInflection*(t-0.5)) - e) / (1 - 2*e)
}

// RushInto starts slowly and ends at full speed.
func RushInto(t float64) float64 { return 2 * Smooth(t/2) }

// RushFrom starts at full speed and eases out.
func RushFrom(t float64) float64 { return 2*Smooth(t/2+0.5) - 1 }

// ThereAndBack goes from 0 to 1 at the midpoint and back to 0.
func ThereAndBack(t float64) float64 {
	if t < 0.5 {
		return Smooth(2 * t)
	}
	return Smooth(2 - 2*t)
}

// DoubleSmooth eases in and out of each half.
func DoubleSmooth(t float64) float64 {
	if t < 0.5 {
		return 0.5 * Smooth(2*t)
	}
	return 0.5 * (1 + Smooth(2*t-1))
}

// Ease adapts a gween easing function. The endpoints are pinned so float32
// rounding never leaves an animation short of its target.
func Ease(fn ease.TweenFunc) RateFunc {
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// rateMin and rateMax bound any rate function output.
const (
	rateMin = -1.0
	rateMax = 2.0
)

// ClampRate bounds f's output to [-1, 2] so overshooting easings cannot blow
// up interpolation. NaN maps to 0.
func ClampRate(f RateFunc) RateFunc {
	return func(t float64) float64 {
		v := f(t)
		if math.IsNaN(v) {
			return 0
		}
		return clamp(v, rateMin, rateMax)
	}
}

var namedRates = map[string]RateFunc{
	"linear":         Linear,
	"smooth":         Smooth,
	"rush_into":      RushInto,
	"rush_from":      RushFrom,
	"there_and_back": ThereAndBack,
	"double_smooth":  DoubleSmooth,
	"in_out_quad":    Ease(ease.InOutQuad),
	"in_out_cubic":   Ease(ease.InOutCubic),
	"in_out_sine":    Ease(ease.InOutSine),
	"out_cubic":      Ease(ease.OutCubic),
	"out_bounce":     Ease(ease.OutBounce),
	"out_elastic":    Ease(ease.OutElastic),
}

// RateByName looks up a rate function by its snake_case name. The empty
// name selects Smooth.
func RateByName(name string) (RateFunc, error) {
	if name == "" {
		return Smooth, nil
	}
	if f, ok := namedRates[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown rate function %q", name)
}

// RateNames lists the names accepted by RateByName, sorted.
func RateNames() []string {
	names := make([]string, 0, len(namedRates))
	for n := range namedRates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
