package rates

import (
	"context"
	"sync"
	"time"

	"max.ks1230/exchange-bot/internal/entity/currency"
)

type testConfig struct {
	ttlMinutes     int64
	timeoutSeconds int64
}

func (c testConfig) CacheTTLMinutes() int64 {
	return c.ttlMinutes
}

func (c testConfig) FetchTimeoutSeconds() int64 {
	return c.timeoutSeconds
}

type fakeFiatProvider struct {
	mu    sync.Mutex
	calls int
	table map[string]float64
	err   error
}

func (f *fakeFiatProvider) FetchRates(_ context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	table := make(map[string]float64, len(f.table))
	for code, rate := range f.table {
		table[code] = rate
	}
	return table, nil
}

func (f *fakeFiatProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCryptoProvider struct {
	mu    sync.Mutex
	calls int
	table map[string]currency.Quote
	err   error
}

func (f *fakeCryptoProvider) FetchPrices(_ context.Context, _ []string) (map[string]currency.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	table := make(map[string]currency.Quote, len(f.table))
	for id, quote := range f.table {
		table[id] = quote
	}
	return table, nil
}

func (f *fakeCryptoProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func changePct(v float64) *float64 {
	return &v
}

// newTestCache builds a cache over the fakes with a controllable clock.
func newTestCache(fiat *fakeFiatProvider, crypto *fakeCryptoProvider, clock *time.Time) *Cache {
	c := NewCache(fiat, crypto, testConfig{ttlMinutes: 15, timeoutSeconds: 1})
	c.now = func() time.Time { return *clock }
	return c
}
