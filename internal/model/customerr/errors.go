package customerr

import "fmt"

// The conversion error taxonomy. All of these are recoverable by the caller;
// none is ever process-fatal and none is retried inside the model.

// UnknownCurrencyError means the raw identifier could not be resolved to any
// supported fiat code or crypto id.
type UnknownCurrencyError struct {
	Input string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Input)
}

// MissingRateError means the currency is supported but the current snapshot
// has no usable price for it (absent entry or zero).
type MissingRateError struct {
	Code string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no usable rate for %s", e.Code)
}

// UpstreamUnavailableError means the table(s) a conversion needs have never
// been fetched successfully, so there is no data at all, not even stale.
type UpstreamUnavailableError struct{}

func (e *UpstreamUnavailableError) Error() string {
	return "rate providers unavailable and no cached rates exist"
}

// InvalidAmountError rejects non-positive or non-finite amounts before any
// cache access.
type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %v", e.Amount)
}
