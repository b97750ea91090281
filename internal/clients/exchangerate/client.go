package exchangerate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"max.ks1230/exchange-bot/internal/entity/currency"
)

const defaultBaseURL = "https://api.exchangerate-api.com"

const latestPath = "/v4/latest/"

type config interface {
	FiatAPIBaseURL() string
}

// Client fetches fiat rates expressed per one unit of the base currency.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(cfg config) *Client {
	baseURL := cfg.FiatAPIBaseURL()
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates returns units of each supported fiat currency per one USD.
// The base currency entry may be absent from the raw table; callers treat
// a missing base entry as 1.
func (c *Client) FetchRates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+latestPath+currency.BaseCurrency, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building fiat rates request")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting fiat rates")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fiat rates provider returned %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading fiat rates response")
	}

	var parsed ratesResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshalling fiat rates response")
	}
	if len(parsed.Rates) == 0 {
		return nil, errors.New("fiat rates provider returned empty table")
	}

	rates := make(map[string]float64, len(parsed.Rates))
	for _, code := range currency.FiatCodes() {
		if rate, ok := parsed.Rates[code]; ok && rate > 0 {
			rates[code] = rate
		}
	}
	return rates, nil
}
