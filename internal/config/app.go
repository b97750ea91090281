package config

const (
	defaultCacheTTLMinutes     = 15
	defaultFetchTimeoutSeconds = 10
)

type AppConfig struct {
	CacheTTL     int64 `yaml:"cache-ttl-minutes"`
	FetchTimeout int64 `yaml:"fetch-timeout-seconds"`
}

func (s *AppConfig) applyDefaults() {
	if s.CacheTTL <= 0 {
		s.CacheTTL = defaultCacheTTLMinutes
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = defaultFetchTimeoutSeconds
	}
}

func (s *AppConfig) CacheTTLMinutes() int64 {
	return s.CacheTTL
}

func (s *AppConfig) FetchTimeoutSeconds() int64 {
	return s.FetchTimeout
}
