package provider

import (
	"chatbuf/config"
	"chatbuf/model"
)

// FromConfig creates the provider selected by cfg.Provider.
//
// The provider package owns the provider lifecycle, so the mapping from
// application settings to provider settings lives here, not in config or ui.
func FromConfig(cfg *config.Config) (model.Provider, error) {
	p, err := NewProvider(Config{
		Type:    MapProviderIDToType(cfg.Provider),
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, err
	}

	config.DebugLog.Debug().
		Str("provider", p.Name()).
		Str("model", p.GetModel()).
		Bool("requires_key", p.RequiresAPIKey()).
		Msg("provider initialized")
	return p, nil
}
