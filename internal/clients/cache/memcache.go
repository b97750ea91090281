package cache

import (
	"strconv"

	"github.com/bradfitz/gomemcache/memcache"

	"go.uber.org/zap"
	"max.ks1230/exchange-bot/internal/logger"
)

const (
	keyBase = 10

	// rendered screens are only valid for the rate generation they were
	// built from; the expiration just garbage-collects old generations
	screenExpirationSeconds = 30 * 60
)

// MemcacheClient caches rendered rates/trending screens between rate
// refreshes. Keys carry the snapshot generation, so a forced refresh
// naturally invalidates every cached screen.
type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

func formatKey(screen string, generation int64) string {
	return screen + ":" + strconv.FormatInt(generation, keyBase)
}

func (mc *MemcacheClient) CacheScreen(screen string, generation int64, text string) error {
	return mc.client.Set(&memcache.Item{
		Key:        formatKey(screen, generation),
		Value:      []byte(text),
		Expiration: screenExpirationSeconds,
	})
}

func (mc *MemcacheClient) GetScreen(screen string, generation int64) (string, error) {
	item, err := mc.client.Get(formatKey(screen, generation))
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}
