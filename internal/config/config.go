package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configFile = "data/config.yaml"

type config struct {
	Telegram     TelegramConfig     `yaml:"telegram"`
	App          AppConfig          `yaml:"app"`
	ExchangeRate ExchangeRateConfig `yaml:"exchangerate"`
	Coingecko    CoingeckoConfig    `yaml:"coingecko"`
	Memcached    MemcachedConfig    `yaml:"memcached"`
	Postgres     PostgresConfig     `yaml:"postgres"`
}

type Service struct {
	config config
}

func New() (*Service, error) {
	s := &Service{}

	rawYAML, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	s.config.App.applyDefaults()
	return s, nil
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) ExchangeRate() *ExchangeRateConfig {
	return &s.config.ExchangeRate
}

func (s *Service) Coingecko() *CoingeckoConfig {
	return &s.config.Coingecko
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}
