package messages

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/model/rates"
	"max.ks1230/exchange-bot/internal/model/storage"
)

type senderMock struct {
	sent    []string
	userIDs []int64
}

func (s *senderMock) SendMessage(text string, userID int64) error {
	s.sent = append(s.sent, text)
	s.userIDs = append(s.userIDs, userID)
	return nil
}

type cfgStub struct{}

func (cfgStub) CacheTTLMinutes() int64 { return 15 }

func (cfgStub) FetchTimeoutSeconds() int64 { return 1 }

type fiatProviderFake struct {
	calls int
	table map[string]float64
}

func (f *fiatProviderFake) FetchRates(_ context.Context) (map[string]float64, error) {
	f.calls++
	return f.table, nil
}

type cryptoProviderFake struct {
	calls int
	table map[string]currency.Quote
}

func (f *cryptoProviderFake) FetchPrices(_ context.Context, _ []string) (map[string]currency.Quote, error) {
	f.calls++
	return f.table, nil
}

type screensFake struct {
	items map[string]string
	hits  int
}

func (s *screensFake) CacheScreen(screen string, generation int64, text string) error {
	if s.items == nil {
		s.items = make(map[string]string)
	}
	s.items[screen] = text
	return nil
}

func (s *screensFake) GetScreen(screen string, _ int64) (string, error) {
	text, ok := s.items[screen]
	if ok {
		s.hits++
	}
	return text, nil
}

type fixture struct {
	sender  *senderMock
	fiat    *fiatProviderFake
	crypto  *cryptoProviderFake
	screens *screensFake
	service *Service
}

func change(v float64) *float64 { return &v }

func newFixture() *fixture {
	fiat := &fiatProviderFake{table: map[string]float64{"EUR": 0.92, "RUB": 90.0}}
	crypto := &cryptoProviderFake{table: map[string]currency.Quote{
		"bitcoin":  {USD: 60000, Change24h: change(1.5)},
		"ethereum": {USD: 3000, Change24h: change(-2.1)},
	}}
	cache := rates.NewCache(fiat, crypto, cfgStub{})
	sender := &senderMock{}
	screens := &screensFake{}

	service := NewService(sender, HandlerDeps{
		Converter: rates.NewConverter(cache),
		Trends:    rates.NewAnalyzer(cache),
		Cache:     cache,
		Storage:   storage.NewInMemStorage(),
		Screens:   screens,
	})
	return &fixture{
		sender:  sender,
		fiat:    fiat,
		crypto:  crypto,
		screens: screens,
		service: service,
	}
}

func (f *fixture) send(t *testing.T, text string) string {
	t.Helper()
	err := f.service.HandleIncomingMessage(context.Background(), Message{Text: text, UserID: 123})
	require.NoError(t, err)
	require.NotEmpty(t, f.sender.sent)
	return f.sender.sent[len(f.sender.sent)-1]
}

func Test_OnStartCommand_ShouldAnswerWithIntroMessage(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/start")

	assert.Equal(t, helloMessage, resp)
	assert.Equal(t, int64(123), f.sender.userIDs[0])
}

func Test_OnUnknownCommand_ShouldAnswerWithHelpHint(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/none")

	assert.Equal(t, dontUnderstandMessage, resp)
}

func Test_OnFreeTextConversion_ShouldAnswerWithResult(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "100 usd to eur")

	assert.True(t, strings.HasPrefix(resp, "✅ 100 USD = 92 EUR"), resp)
	assert.Contains(t, resp, "Rate: 1 USD = 0.92 EUR")
}

func Test_OnConvertCommand_ShouldAnswerWithResult(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/convert 2 eth btc")

	assert.Contains(t, resp, "2 ETH = 0.1 BTC")
	assert.Contains(t, resp, "Rate: 1 ETH = 0.05 BTC")
}

func Test_OnConvertWithoutTarget_ShouldUseDefaultFiat(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/convert 1 btc")

	assert.Contains(t, resp, "1 BTC = 60000 USD")
}

func Test_OnConvertWithoutTarget_ShouldHonorUserDefault(t *testing.T) {
	f := newFixture()

	f.send(t, "/setfiat eur")
	resp := f.send(t, "/convert 1 btc")

	assert.Contains(t, resp, "1 BTC = 55200 EUR")
}

func Test_OnConvertUnknownCurrency_ShouldExplain(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/convert 1 zzz usd")

	assert.Equal(t, unknownCurrencyMessage, resp)
}

func Test_OnConvertBadUsage_ShouldShowUsage(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/convert nope")

	assert.Equal(t, incorrectConvertMessage, resp)
}

func Test_OnRatesCommand_ShouldListRates(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/rates fiat")
	assert.Contains(t, resp, "EUR: 0.9200")

	resp = f.send(t, "/rates crypto")
	assert.Contains(t, resp, "BTC: $60000.00")
	assert.Contains(t, resp, "+1.50%")
}

func Test_OnRatesCommand_SecondCallIsServedFromScreenCache(t *testing.T) {
	f := newFixture()

	first := f.send(t, "/rates fiat")
	second := f.send(t, "/rates fiat")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.screens.hits)
	// one fetch pair for both requests
	assert.Equal(t, 1, f.fiat.calls)
}

func Test_OnTrendingCommand_ShouldRankMovers(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/trending gainers")
	assert.True(t, strings.Contains(resp, "1. BTC"), resp)

	resp = f.send(t, "/trending losers")
	assert.True(t, strings.Contains(resp, "1. ETH"), resp)

	resp = f.send(t, "/trending popular")
	assert.Contains(t, resp, "BTC")
	assert.Contains(t, resp, "ETH")
}

func Test_OnRefreshCommand_ShouldForceFetch(t *testing.T) {
	f := newFixture()

	f.send(t, "/rates fiat")
	resp := f.send(t, "/refresh")

	assert.Equal(t, ratesUpdatedMessage, resp)
	assert.Equal(t, 2, f.fiat.calls)
	assert.Equal(t, 2, f.crypto.calls)
}

func Test_OnCurrenciesCommand_ShouldListCatalog(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/currencies")

	assert.Contains(t, resp, "USD")
	assert.Contains(t, resp, "BTC")
	assert.Contains(t, resp, "AVAX")
}

func Test_OnSetCryptoCommand_ShouldValidateClass(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/setcrypto eur")
	assert.Contains(t, resp, "not a crypto")

	resp = f.send(t, "/setcrypto eth")
	assert.Contains(t, resp, "ETH")
}

func Test_OnFavoriteCommands_ShouldToggleAndList(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "/favorites")
	assert.Equal(t, noFavoritesMessage, resp)

	resp = f.send(t, "/favorite btc")
	assert.Contains(t, resp, "Added BTC")

	resp = f.send(t, "/favorites")
	assert.Contains(t, resp, "BTC: $60000.00")

	resp = f.send(t, "/favorite btc")
	assert.Contains(t, resp, "Removed BTC")
}

func Test_OnPlainChatter_ShouldNudgeTowardsHelp(t *testing.T) {
	f := newFixture()

	resp := f.send(t, "hello there")

	assert.Equal(t, dontUnderstandMessage, resp)
}
