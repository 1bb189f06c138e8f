package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"percity/internal/domain"
)

// Variant describes one shipped level of the energy-mixing game.
type Variant struct {
	ID               string             `json:"id"`
	Mode             string             `json:"mode"` // "static" or "dynamic"
	Weights          map[string]float64 `json:"weights,omitempty"`
	ItemsPerCategory int                `json:"items_per_category"`
	TargetMin        float64            `json:"target_min"`
	TargetMax        float64            `json:"target_max"`
	MaxAttempts      int                `json:"max_attempts"`
	StartPhase       string             `json:"start_phase"` // "intro" or "playing"
}

// GameConfig is the root of data/game_config.json.
type GameConfig struct {
	DefaultVariant string    `json:"default_variant"`
	WinAwardWatts  int64     `json:"win_award_watts"`
	Variants       []Variant `json:"variants"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetWinAwardWatts returns the watts awarded for a won game.
func GetWinAwardWatts() int64 {
	if cfg == nil || cfg.WinAwardWatts <= 0 {
		return 100 // Safe default
	}
	return cfg.WinAwardWatts
}

// GetVariant returns the variant for a given ID, or the default if not found.
func GetVariant(variantID string) Variant {
	if cfg == nil {
		return builtinVariant()
	}

	target := variantID
	if target == "" {
		target = cfg.DefaultVariant
	}

	for _, v := range cfg.Variants {
		if v.ID == target {
			return v
		}
	}

	// Fallback to default variant if specific ID not found
	for _, v := range cfg.Variants {
		if v.ID == cfg.DefaultVariant {
			return v
		}
	}

	return builtinVariant()
}

// builtinVariant is the classic static level, used when no config is loaded.
func builtinVariant() Variant {
	return Variant{
		ID:   "city-classic",
		Mode: string(domain.WeightModeStatic),
		Weights: map[string]float64{
			string(domain.CategorySolar): 2,
			string(domain.CategoryWind):  6,
			string(domain.CategoryHydro): 12,
		},
		ItemsPerCategory: 5,
		TargetMin:        80,
		TargetMax:        88,
		MaxAttempts:      3,
		StartPhase:       string(domain.PhaseIntro),
	}
}

// Rules converts the variant into domain rules.
func (v Variant) Rules() domain.Rules {
	startPhase := domain.Phase(v.StartPhase)
	if startPhase != domain.PhasePlaying {
		startPhase = domain.PhaseIntro
	}
	return domain.Rules{
		ItemsPerCategory: v.ItemsPerCategory,
		TargetMin:        v.TargetMin,
		TargetMax:        v.TargetMax,
		MaxAttempts:      v.MaxAttempts,
		StartPhase:       startPhase,
	}
}

// DomainWeights converts the variant into a domain weight configuration.
func (v Variant) DomainWeights() domain.Weights {
	if v.Mode == string(domain.WeightModeDynamic) {
		return domain.NewDynamicWeights(v.ItemsPerCategory)
	}

	table := make(map[domain.Category]float64, len(v.Weights))
	for cat, w := range v.Weights {
		table[domain.Category(cat)] = w
	}
	return domain.NewStaticWeights(table)
}
