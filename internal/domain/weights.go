package domain

import "math"

// WeightMode selects how per-category weights are derived.
type WeightMode string

const (
	// WeightModeStatic uses a fixed per-category table for the whole session.
	WeightModeStatic WeightMode = "static"
	// WeightModeDynamic derives weights from the weather intensity sliders.
	WeightModeDynamic WeightMode = "dynamic"
)

// Weights maps a category to the per-item contribution it adds to the total.
type Weights struct {
	Mode             WeightMode
	Static           map[Category]float64
	Weather          map[Category]float64 // intensity in [0,1]
	ItemsPerCategory int
}

// defaultWeatherIntensity is the slider midpoint every category starts at.
const defaultWeatherIntensity = 0.5

// NewStaticWeights builds a fixed weight table.
func NewStaticWeights(table map[Category]float64) Weights {
	static := make(map[Category]float64, len(table))
	for cat, w := range table {
		static[cat] = w
	}
	return Weights{Mode: WeightModeStatic, Static: static}
}

// NewDynamicWeights builds weather-driven weights with every slider at the
// midpoint. perCategory must match the variant's stock size since the
// contribution formula normalizes by it.
func NewDynamicWeights(perCategory int) Weights {
	weather := make(map[Category]float64, len(Categories))
	for _, cat := range Categories {
		weather[cat] = defaultWeatherIntensity
	}
	return Weights{Mode: WeightModeDynamic, Weather: weather, ItemsPerCategory: perCategory}
}

// Weight returns the per-item contribution for cat. Unknown categories and
// unconfigured modes weigh zero. Dynamic weights are returned unrounded;
// rounding is display-only, see DisplayWeight.
func (w Weights) Weight(cat Category) float64 {
	switch w.Mode {
	case WeightModeDynamic:
		if w.ItemsPerCategory <= 0 {
			return 0
		}
		return w.Weather[cat] * 100 / float64(w.ItemsPerCategory)
	case WeightModeStatic:
		return w.Static[cat]
	default:
		return 0
	}
}

// SetWeather stores the slider value for cat, given on the client's 0..100
// scale and clamped to it. No-op for static weights.
func (w *Weights) SetWeather(cat Category, intensity float64) {
	if w.Mode != WeightModeDynamic {
		return
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 100 {
		intensity = 100
	}
	if w.Weather == nil {
		w.Weather = make(map[Category]float64, len(Categories))
	}
	w.Weather[cat] = intensity / 100
}

// WeatherIntensity returns the stored slider value for cat on the client's
// 0..100 scale.
func (w Weights) WeatherIntensity(cat Category) float64 {
	return w.Weather[cat] * 100
}

// DisplayWeight returns the per-item contribution rounded to 2 decimals for
// presentation.
func (w Weights) DisplayWeight(cat Category) float64 {
	return round2(w.Weight(cat))
}

// DisplayTotal rounds a summed total to 2 decimals for presentation.
func DisplayTotal(total float64) float64 {
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
