package rates

import (
	"time"

	"max.ks1230/exchange-bot/internal/entity/currency"
)

// Snapshot is one atomically-published generation of both rate tables.
// The cache replaces it wholesale on refresh and never mutates a published
// one, so holders may read it without locking for the duration of a single
// operation. References must not be retained across operations.
type Snapshot struct {
	fiat      map[string]float64
	crypto    map[string]currency.Quote
	fiatSet   bool
	cryptoSet bool
	fetchedAt time.Time
}

func (s Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// HasFiat reports whether the fiat table has ever been populated, even if
// only with now-stale data.
func (s Snapshot) HasFiat() bool { return s.fiatSet }

func (s Snapshot) HasCrypto() bool { return s.cryptoSet }

// FiatRate returns units of code per one base-currency unit. The base
// currency itself is implicitly 1 when the raw table omits it. A zero or
// absent entry for any other code is reported as not usable.
func (s Snapshot) FiatRate(code string) (float64, bool) {
	if rate, ok := s.fiat[code]; ok && rate > 0 {
		return rate, true
	}
	if code == currency.BaseCurrency {
		return 1, true
	}
	return 0, false
}

// Quote returns the crypto quote for id. A quote without a positive USD
// price is reported as not usable.
func (s Snapshot) Quote(id string) (currency.Quote, bool) {
	q, ok := s.crypto[id]
	if !ok || q.USD <= 0 {
		return currency.Quote{}, false
	}
	return q, true
}

// Quotes exposes the crypto table for iteration. Callers must treat it as
// read-only.
func (s Snapshot) Quotes() map[string]currency.Quote { return s.crypto }

// FiatRates exposes the fiat table for iteration. Callers must treat it as
// read-only.
func (s Snapshot) FiatRates() map[string]float64 { return s.fiat }
