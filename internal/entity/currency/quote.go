package currency

// Quote holds one crypto's prices in the fiat targets the provider is asked
// for, plus the optional 24-hour percent change. A quote usable for
// conversions always carries a non-zero USD price.
type Quote struct {
	USD       float64
	EUR       float64
	RUB       float64
	Change24h *float64
}
