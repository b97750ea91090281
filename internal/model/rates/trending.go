package rates

import (
	"context"
	"sort"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/model/customerr"
)

const trendTop = 5

// popularIDs is a fixed, hand-picked set, independent of any ranking.
var popularIDs = []string{"bitcoin", "ethereum", "binancecoin"}

type TrendEntry struct {
	Key       currency.Key
	Symbol    string
	Name      string
	PriceUSD  float64
	Change24h float64
}

type Trends struct {
	Gainers []TrendEntry
	Losers  []TrendEntry
	Popular []currency.Key
}

// Analyzer derives gainer/loser rankings from the 24h-change field of the
// crypto table.
type Analyzer struct {
	cache *Cache
}

func NewAnalyzer(cache *Cache) *Analyzer {
	return &Analyzer{cache: cache}
}

// Trending ranks cryptos by 24h change. Entries without a change value are
// excluded rather than treated as zero. Ties keep table iteration order,
// which is not deterministic across refreshes.
func (a *Analyzer) Trending(ctx context.Context) (Trends, error) {
	a.cache.EnsureFresh(ctx)
	snap := a.cache.Snapshot()

	if !snap.HasCrypto() {
		return Trends{}, &customerr.UpstreamUnavailableError{}
	}

	entries := make([]TrendEntry, 0, len(snap.Quotes()))
	for id, quote := range snap.Quotes() {
		if quote.Change24h == nil {
			continue
		}
		meta, ok := currency.MetaOf(currency.CryptoKey(id))
		if !ok {
			continue
		}
		entries = append(entries, TrendEntry{
			Key:       currency.CryptoKey(id),
			Symbol:    meta.Symbol,
			Name:      meta.Name,
			PriceUSD:  quote.USD,
			Change24h: *quote.Change24h,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Change24h > entries[j].Change24h
	})
	gainers := topOf(entries)

	losers := make([]TrendEntry, len(entries))
	for i, e := range entries {
		losers[len(entries)-1-i] = e
	}
	losers = topOf(losers)

	popular := make([]currency.Key, 0, len(popularIDs))
	for _, id := range popularIDs {
		popular = append(popular, currency.CryptoKey(id))
	}

	return Trends{Gainers: gainers, Losers: losers, Popular: popular}, nil
}

func topOf(entries []TrendEntry) []TrendEntry {
	if len(entries) > trendTop {
		entries = entries[:trendTop]
	}
	res := make([]TrendEntry, len(entries))
	copy(res, entries)
	return res
}
