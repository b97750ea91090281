package config

type ExchangeRateConfig struct {
	BaseURL string `yaml:"base-url"`
}

func (e *ExchangeRateConfig) FiatAPIBaseURL() string {
	return e.BaseURL
}
