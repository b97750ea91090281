package rates

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/logger"
)

type fiatProvider interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

type cryptoProvider interface {
	FetchPrices(ctx context.Context, ids []string) (map[string]currency.Quote, error)
}

type config interface {
	CacheTTLMinutes() int64
	FetchTimeoutSeconds() int64
}

// Cache owns the current rate Snapshot and the TTL policy around it.
//
// Refreshes are serialized: the mutex guards the whole check-TTL / fetch /
// publish section, so a caller arriving while a refresh is in flight blocks
// until it finishes, then observes the fresh snapshot and returns without
// issuing another upstream fetch. Under load this caps upstream request
// amplification at one in-flight fetch pair.
type Cache struct {
	fiat         fiatProvider
	crypto       cryptoProvider
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

func NewCache(fiat fiatProvider, crypto cryptoProvider, cfg config) *Cache {
	return &Cache{
		fiat:         fiat,
		crypto:       crypto,
		ttl:          time.Duration(cfg.CacheTTLMinutes()) * time.Minute,
		fetchTimeout: time.Duration(cfg.FetchTimeoutSeconds()) * time.Second,
		now:          time.Now,
	}
}

// EnsureFresh refreshes both tables when the snapshot is stale and is a
// no-op otherwise. A fetcher failure degrades that one table to its previous
// values instead of aborting the refresh; fetchedAt advances regardless.
func (c *Cache) EnsureFresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.snap.fetchedAt.IsZero() && c.now().Sub(c.snap.fetchedAt) < c.ttl {
		return
	}
	c.refreshLocked(ctx)
}

// ForceRefresh discards the TTL state and fetches both tables now.
func (c *Cache) ForceRefresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap.fetchedAt = time.Time{}
	c.refreshLocked(ctx)
}

// Snapshot returns the current published snapshot. The returned value is
// immutable; no further locking is needed to read it.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) refreshLocked(ctx context.Context) {
	span, _ := opentracing.StartSpanFromContext(ctx, "refreshRates")
	defer span.Finish()

	logger.Info("refreshing rates")

	// The refresh outlives any single caller: waiters serialized on the
	// mutex still need the result even if the requesting caller is gone.
	fetchCtx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	var (
		wg          sync.WaitGroup
		fiatTable   map[string]float64
		fiatErr     error
		cryptoTable map[string]currency.Quote
		cryptoErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fiatTable, fiatErr = c.fiat.FetchRates(fetchCtx)
	}()
	go func() {
		defer wg.Done()
		cryptoTable, cryptoErr = c.crypto.FetchPrices(fetchCtx, currency.CryptoIDs())
	}()
	wg.Wait()

	next := Snapshot{
		fiat:      c.snap.fiat,
		crypto:    c.snap.crypto,
		fiatSet:   c.snap.fiatSet,
		cryptoSet: c.snap.cryptoSet,
		fetchedAt: c.now(),
	}
	if next.fetchedAt.Before(c.snap.fetchedAt) {
		next.fetchedAt = c.snap.fetchedAt
	}

	if fiatErr != nil {
		logger.Warn("fiat rates fetch failed, keeping previous table", zap.Error(fiatErr))
	} else {
		next.fiat = fiatTable
		next.fiatSet = true
	}
	if cryptoErr != nil {
		logger.Warn("crypto prices fetch failed, keeping previous table", zap.Error(cryptoErr))
	} else {
		next.crypto = cryptoTable
		next.cryptoSet = true
	}

	c.snap = next
	observeRefresh(fiatErr, cryptoErr)

	logger.Info("rates refreshed",
		zap.Bool("fiatOK", fiatErr == nil),
		zap.Bool("cryptoOK", cryptoErr == nil),
		zap.Time("fetchedAt", next.fetchedAt))
}
