package config

import "time"

// OracleConfig configures the prediction oracle HTTP client.
type OracleConfig struct {
	APIKey           string        `koanf:"api_key" json:"-"` // never serialize
	BaseURL          string        `koanf:"base_url" json:"baseUrl" validate:"omitempty,url"`
	Timeout          time.Duration `koanf:"timeout" json:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" json:"failureThreshold" validate:"min=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" json:"openTimeout" validate:"gt=0"`
}

// DefaultOracleConfig returns the oracle defaults. BaseURL is empty, so the
// engine runs on heuristics until one is configured.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		Timeout:          800 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// IsEnabled returns true if an oracle endpoint is configured
func (c OracleConfig) IsEnabled() bool {
	return c.BaseURL != ""
}

// Endpoint returns the full URL for an oracle call
func (c OracleConfig) Endpoint(call string) string {
	return c.BaseURL + "/v1/predict/" + call
}
