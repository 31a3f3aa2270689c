package config

import "sort"

var Presets = map[string]*Config{
	"default":      DefaultConfig(),
	"long-context": longContext(),
	"quick":        quick(),
	"identity":     identity(),
}

func longContext() *Config {
	cfg := DefaultConfig()
	cfg.Base.Initial = DefaultBaseMax
	return cfg
}

func quick() *Config {
	cfg := DefaultConfig()
	cfg.Pacing.Identity /= 8
	cfg.Pacing.Highlight /= 8
	cfg.Pacing.Step /= 8
	cfg.Pacing.Settle /= 8
	cfg.Scrub.Rate *= 8
	return cfg
}

func identity() *Config {
	cfg := DefaultConfig()
	cfg.Tokens = append([]TokenConfig{{
		Label:    "Twinkle",
		Position: 0,
		Query:    clone(twinkleQ),
		Key:      clone(twinkleK),
	}}, cfg.Tokens[1:]...)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
