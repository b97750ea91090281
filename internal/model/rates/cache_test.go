package rates

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/exchange-bot/internal/entity/currency"
)

func Test_EnsureFresh_ShouldFetchOncePerTTLWindow(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{"bitcoin": {USD: 60000}}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)

	cache.EnsureFresh(ctx)
	cache.EnsureFresh(ctx)
	clock = clock.Add(14 * time.Minute)
	cache.EnsureFresh(ctx)

	assert.Equal(t, 1, fiat.callCount())
	assert.Equal(t, 1, crypto.callCount())
}

func Test_EnsureFresh_ShouldRefetchAfterTTLExpires(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{"bitcoin": {USD: 60000}}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)

	cache.EnsureFresh(ctx)
	clock = clock.Add(16 * time.Minute)
	cache.EnsureFresh(ctx)

	assert.Equal(t, 2, fiat.callCount())
	assert.Equal(t, 2, crypto.callCount())
}

func Test_ForceRefresh_ShouldFetchRegardlessOfTTL(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{"bitcoin": {USD: 60000}}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)

	cache.EnsureFresh(ctx)
	cache.ForceRefresh(ctx)
	cache.ForceRefresh(ctx)

	assert.Equal(t, 3, fiat.callCount())
	assert.Equal(t, 3, crypto.callCount())
}

func Test_Refresh_ShouldKeepPreviousTableWhenOneFetcherFails(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{"bitcoin": {USD: 60000}}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)
	cache.EnsureFresh(ctx)
	firstFetchedAt := cache.Snapshot().FetchedAt()

	fiat.err = errors.New("provider down")
	crypto.table = map[string]currency.Quote{"bitcoin": {USD: 61000}}
	clock = clock.Add(20 * time.Minute)
	cache.EnsureFresh(ctx)

	snap := cache.Snapshot()

	// fiat degraded to previous values, crypto took the new ones
	rate, ok := snap.FiatRate("EUR")
	require.True(t, ok)
	assert.Equal(t, 0.92, rate)

	quote, ok := snap.Quote("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 61000.0, quote.USD)

	// partial success still advances fetchedAt
	assert.True(t, snap.FetchedAt().After(firstFetchedAt))
}

func Test_Refresh_ShouldLeaveTablesUnsetWhenBothFetchersFail(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{err: errors.New("provider down")}
	crypto := &fakeCryptoProvider{err: errors.New("provider down")}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)
	cache.EnsureFresh(ctx)

	snap := cache.Snapshot()
	assert.False(t, snap.HasFiat())
	assert.False(t, snap.HasCrypto())
	assert.False(t, snap.FetchedAt().IsZero())
}

func Test_Snapshot_FiatRate_ShouldTreatAbsentBaseEntryAsOne(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)
	cache.EnsureFresh(ctx)

	rate, ok := cache.Snapshot().FiatRate(currency.BaseCurrency)
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)
}

func Test_EnsureFresh_ConcurrentCallersShareOneFetchPair(t *testing.T) {
	ctx := context.Background()
	fiat := &fakeFiatProvider{table: map[string]float64{"EUR": 0.92}}
	crypto := &fakeCryptoProvider{table: map[string]currency.Quote{"bitcoin": {USD: 60000}}}
	clock := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)

	cache := newTestCache(fiat, crypto, &clock)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			cache.EnsureFresh(ctx)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 1, fiat.callCount())
	assert.Equal(t, 1, crypto.callCount())
}
