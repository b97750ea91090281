package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var counterRefreshes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "exchange_bot",
		Subsystem: "rates",
		Name:      "refresh_total",
	},
	[]string{"result"},
)

func observeRefresh(fiatErr, cryptoErr error) {
	result := "ok"
	switch {
	case fiatErr != nil && cryptoErr != nil:
		result = "failed"
	case fiatErr != nil || cryptoErr != nil:
		result = "partial"
	}
	counterRefreshes.WithLabelValues(result).Inc()
}
