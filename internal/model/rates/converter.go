package rates

import (
	"context"
	"math"
	"time"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/model/customerr"
)

const (
	fiatResultPlaces   = 2
	cryptoResultPlaces = 8
	fiatRatePlaces     = 6
	cryptoRatePlaces   = 8
)

// Result is one finished conversion. AsOf carries the fetchedAt of the
// snapshot that produced it, not wall-clock now.
type Result struct {
	Amount float64
	From   currency.Key
	To     currency.Key
	Output float64
	Rate   float64
	AsOf   time.Time
}

// Converter computes cross-currency conversions by pivoting through the
// base currency. It never retries; every failure is a typed customerr value
// for the caller to handle.
type Converter struct {
	cache *Cache
}

func NewConverter(cache *Cache) *Converter {
	return &Converter{cache: cache}
}

// Convert resolves both identifiers, freshens the cache and converts amount
// from one currency into the other.
func (c *Converter) Convert(ctx context.Context, amount float64, fromRaw, toRaw string) (Result, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Result{}, &customerr.InvalidAmountError{Amount: amount}
	}

	from, ok := currency.Lookup(fromRaw)
	if !ok {
		return Result{}, &customerr.UnknownCurrencyError{Input: fromRaw}
	}
	to, ok := currency.Lookup(toRaw)
	if !ok {
		return Result{}, &customerr.UnknownCurrencyError{Input: toRaw}
	}

	if from == to {
		// Exact by contract: same currency converts 1:1 with no rounding
		// and no cache access.
		return Result{
			Amount: amount,
			From:   from,
			To:     to,
			Output: amount,
			Rate:   1,
			AsOf:   c.cache.Snapshot().FetchedAt(),
		}, nil
	}

	c.cache.EnsureFresh(ctx)
	snap := c.cache.Snapshot()

	if err := checkAvailability(snap, from, to); err != nil {
		return Result{}, err
	}

	rate, err := pivotRate(snap, from, to)
	if err != nil {
		return Result{}, err
	}

	output := amount * rate

	return Result{
		Amount: amount,
		From:   from,
		To:     to,
		Output: roundTo(output, resultPlaces(to)),
		Rate:   roundTo(rate, ratePlaces(from, to)),
		AsOf:   snap.FetchedAt(),
	}, nil
}

// checkAvailability distinguishes "never had data" from "have data but not
// for this currency". Only the former is UpstreamUnavailable.
func checkAvailability(snap Snapshot, from, to currency.Key) error {
	needsFiat := (from.IsFiat() && from.Code != currency.BaseCurrency) ||
		(to.IsFiat() && to.Code != currency.BaseCurrency)
	needsCrypto := from.IsCrypto() || to.IsCrypto()

	if needsFiat && !snap.HasFiat() {
		return &customerr.UpstreamUnavailableError{}
	}
	if needsCrypto && !snap.HasCrypto() {
		return &customerr.UpstreamUnavailableError{}
	}
	return nil
}

// pivotRate returns units of "to" per one unit of "from", routed through the
// base currency. The returned rate is full precision; rounding is applied by
// the caller for display only.
func pivotRate(snap Snapshot, from, to currency.Key) (float64, error) {
	switch {
	case from.IsFiat() && to.IsFiat():
		usdPerFrom, err := usdValueOfFiatUnit(snap, from.Code)
		if err != nil {
			return 0, err
		}
		if to.Code == currency.BaseCurrency {
			return usdPerFrom, nil
		}
		toRate, ok := snap.FiatRate(to.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: to.Code}
		}
		return usdPerFrom * toRate, nil

	case from.IsCrypto() && to.IsCrypto():
		fromQuote, ok := snap.Quote(from.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: from.Code}
		}
		toQuote, ok := snap.Quote(to.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: to.Code}
		}
		return fromQuote.USD / toQuote.USD, nil

	case from.IsFiat() && to.IsCrypto():
		usdPerFrom, err := usdValueOfFiatUnit(snap, from.Code)
		if err != nil {
			return 0, err
		}
		toQuote, ok := snap.Quote(to.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: to.Code}
		}
		return usdPerFrom / toQuote.USD, nil

	default: // crypto -> fiat
		fromQuote, ok := snap.Quote(from.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: from.Code}
		}
		if to.Code == currency.BaseCurrency {
			return fromQuote.USD, nil
		}
		toRate, ok := snap.FiatRate(to.Code)
		if !ok {
			return 0, &customerr.MissingRateError{Code: to.Code}
		}
		return fromQuote.USD * toRate, nil
	}
}

// usdValueOfFiatUnit returns how many USD one unit of code is worth.
func usdValueOfFiatUnit(snap Snapshot, code string) (float64, error) {
	if code == currency.BaseCurrency {
		return 1, nil
	}
	rate, ok := snap.FiatRate(code)
	if !ok {
		return 0, &customerr.MissingRateError{Code: code}
	}
	return 1 / rate, nil
}

func resultPlaces(to currency.Key) int {
	if to.IsFiat() {
		return fiatResultPlaces
	}
	return cryptoResultPlaces
}

func ratePlaces(from, to currency.Key) int {
	if from.IsFiat() && to.IsFiat() {
		return fiatRatePlaces
	}
	return cryptoRatePlaces
}

func roundTo(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}
