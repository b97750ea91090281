package config

type CoingeckoConfig struct {
	BaseURL string `yaml:"base-url"`
}

func (c *CoingeckoConfig) CryptoAPIBaseURL() string {
	return c.BaseURL
}
