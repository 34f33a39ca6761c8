package models

// Float32 returns a pointer to v, for configuring temperatures inline.
func Float32(v float32) *float32 { return &v }

// DefaultCatalog is the built-in set of selectable model
// configurations. The descriptions are surfaced verbatim in the model
// picker.
func DefaultCatalog() []Config {
	return []Config{
		{
			ID:          "flash-balanced",
			Name:        "2.5 flash",
			Description: "Model yang seimbang untuk sebagian besar tugas.",
			Provider:    ProviderGemini,
			ModelID:     "gemini-2.5-flash",
			Generation:  Generation{Temperature: Float32(0.7)},
		},
		{
			ID:          "flash-creative",
			Name:        "2.5 flash (Creative)",
			Description: "Untuk tugas yang membutuhkan lebih banyak imajinasi.",
			Provider:    ProviderGemini,
			ModelID:     "gemini-2.5-flash",
			Generation:  Generation{Temperature: Float32(1.0)},
		},
	}
}

// FindConfig looks a configuration up by ID.
func FindConfig(catalog []Config, id string) (Config, bool) {
	for _, cfg := range catalog {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return Config{}, false
}
