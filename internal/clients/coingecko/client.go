package coingecko

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"max.ks1230/exchange-bot/internal/entity/currency"
)

const defaultBaseURL = "https://api.coingecko.com"

const (
	simplePricePath    = "/api/v3/simple/price"
	idsParam           = "ids"
	vsCurrenciesParam  = "vs_currencies"
	includeChangeParam = "include_24hr_change"

	vsCurrencies = "usd,eur,rub"
)

type config interface {
	CryptoAPIBaseURL() string
}

// Client fetches crypto prices in the fiat targets plus 24h change.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(cfg config) *Client {
	baseURL := cfg.CryptoAPIBaseURL()
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type priceEntry struct {
	USD       float64  `json:"usd"`
	EUR       float64  `json:"eur"`
	RUB       float64  `json:"rub"`
	Change24h *float64 `json:"usd_24h_change"`
}

// FetchPrices returns quotes for the requested crypto ids. Ids the provider
// does not know are simply absent from the result, not an error.
func (c *Client) FetchPrices(ctx context.Context, ids []string) (map[string]currency.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+simplePricePath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building crypto prices request")
	}

	q := req.URL.Query()
	q.Add(idsParam, strings.Join(ids, ","))
	q.Add(vsCurrenciesParam, vsCurrencies)
	q.Add(includeChangeParam, "true")
	req.URL.RawQuery = q.Encode()

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting crypto prices")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("crypto prices provider returned %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading crypto prices response")
	}

	var parsed map[string]priceEntry
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshalling crypto prices response")
	}
	if len(parsed) == 0 {
		return nil, errors.New("crypto prices provider returned empty table")
	}

	quotes := make(map[string]currency.Quote, len(parsed))
	for id, entry := range parsed {
		quotes[id] = currency.Quote{
			USD:       entry.USD,
			EUR:       entry.EUR,
			RUB:       entry.RUB,
			Change24h: entry.Change24h,
		}
	}
	return quotes, nil
}
