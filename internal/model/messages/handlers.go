package messages

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/entity/user"
	"max.ks1230/exchange-bot/internal/model/customerr"
	"max.ks1230/exchange-bot/internal/model/rates"
)

const (
	helloMessage = "Hello! I am the exchange bot 💱\n" +
		"Send me something like \"100 usd to eur\" or try /help"
	helpMessage = "Commands:\n" +
		"/convert <amount> <from> <to> - convert currencies\n" +
		"/rates fiat|crypto - current rates\n" +
		"/trending gainers|losers|popular - 24h movers\n" +
		"/refresh - force a rates update\n" +
		"/currencies - everything I support\n" +
		"/setfiat <code>, /setcrypto <ticker> - your defaults\n" +
		"/favorite <currency>, /favorites - your watchlist\n\n" +
		"Plain text works too: \"2 eth -> btc\""
	dontUnderstandMessage = "I don't understand you :( Try /help"
	somethingWrongMessage = "Sorry, something wrong happened..."

	incorrectConvertMessage  = "Usage: /convert <amount> <from> <to>"
	invalidAmountMessage     = "The amount should be a positive number"
	unknownCurrencyMessage   = "I don't know that currency. See /currencies"
	missingRateMessage       = "I can't price that currency right now. Try again later"
	upstreamDownMessage      = "Rate providers are unreachable and I have no cached rates yet. Try /refresh in a minute"
	ratesUpdatedMessage      = "Rates updated ✅"
	noFavoritesMessage       = "You have no favorites yet. Add one with /favorite <currency>"
	cannotLoadProfileMessage = "Can't load your settings atm. Try later"
	cannotSaveProfileMessage = "Can't save your settings atm. Try later"
)

const (
	startCommand      = "/start"
	helpCommand       = "/help"
	convertCommand    = "/convert"
	ratesCommand      = "/rates"
	trendingCommand   = "/trending"
	refreshCommand    = "/refresh"
	currenciesCommand = "/currencies"
	setFiatCommand    = "/setfiat"
	setCryptoCommand  = "/setcrypto"
	favoriteCommand   = "/favorite"
	favoritesCommand  = "/favorites"
)

const (
	defaultFiat   = currency.BaseCurrency
	defaultCrypto = "bitcoin"
)

type converter interface {
	Convert(ctx context.Context, amount float64, fromRaw, toRaw string) (rates.Result, error)
}

type trendAnalyzer interface {
	Trending(ctx context.Context) (rates.Trends, error)
}

type rateCache interface {
	EnsureFresh(ctx context.Context)
	ForceRefresh(ctx context.Context)
	Snapshot() rates.Snapshot
}

type UserStorage interface {
	GetByID(ctx context.Context, userID int64) (user.Record, error)
	SaveByID(ctx context.Context, userID int64, rec user.Record) error
}

// ScreenCache is optional; a nil cache disables screen caching.
type ScreenCache interface {
	CacheScreen(screen string, generation int64, text string) error
	GetScreen(screen string, generation int64) (string, error)
}

type HandlerDeps struct {
	Converter converter
	Trends    trendAnalyzer
	Cache     rateCache
	Storage   UserStorage
	Screens   ScreenCache
}

type handler func(ctx context.Context, arg string, userID int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	converter   converter
	trends      trendAnalyzer
	cache       rateCache
	storage     UserStorage
	screens     ScreenCache
}

func newHandler(deps HandlerDeps) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		converter:   deps.Converter,
		trends:      deps.Trends,
		cache:       deps.Cache,
		storage:     deps.Storage,
		screens:     deps.Screens,
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, userID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg, userID)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[helpCommand] = s.handleHelp
	m[convertCommand] = s.handleConvert
	m[ratesCommand] = s.handleRates
	m[trendingCommand] = s.handleTrending
	m[refreshCommand] = s.handleRefresh
	m[currenciesCommand] = s.handleCurrencies
	m[setFiatCommand] = s.handleSetFiat
	m[setCryptoCommand] = s.handleSetCrypto
	m[favoriteCommand] = s.handleFavorite
	m[favoritesCommand] = s.handleFavorites

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleHelp(_ context.Context, _ string, _ int64) (string, error) {
	return helpMessage, nil
}

func (s *HandlerService) handleConvert(ctx context.Context, arg string, userID int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 2 || len(args) > 3 {
		return incorrectConvertMessage, nil
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(args[0], ",", "."), 64)
	if err != nil {
		return invalidAmountMessage, nil
	}

	from := args[1]
	var to string
	if len(args) == 3 {
		to = args[2]
	} else {
		to, err = s.defaultTarget(ctx, from, userID)
		if err != nil {
			return cannotLoadProfileMessage, errors.Wrap(err, "handle convert")
		}
	}

	return s.convert(ctx, amount, from, to)
}

// defaultTarget picks the user's default destination when the command omits
// it: the default fiat for a crypto source and vice versa.
func (s *HandlerService) defaultTarget(ctx context.Context, fromRaw string, userID int64) (string, error) {
	rec, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if key, ok := currency.Lookup(fromRaw); ok && key.IsFiat() {
		return rec.DefaultCrypto(defaultCrypto), nil
	}
	return rec.DefaultFiat(defaultFiat), nil
}

func (s *HandlerService) convert(ctx context.Context, amount float64, from, to string) (string, error) {
	res, err := s.converter.Convert(ctx, amount, from, to)
	if err != nil {
		return conversionErrorMessage(err), nil
	}
	return formatResult(res), nil
}

func (s *HandlerService) handleRates(ctx context.Context, arg string, _ int64) (string, error) {
	screen := strings.TrimSpace(strings.ToLower(arg))
	if screen != "fiat" && screen != "crypto" {
		return "Usage: /rates fiat|crypto", nil
	}

	s.cache.EnsureFresh(ctx)
	snap := s.cache.Snapshot()

	if text, ok := s.cachedScreen(screen, snap); ok {
		return text, nil
	}

	var text string
	if screen == "fiat" {
		if !snap.HasFiat() {
			return upstreamDownMessage, nil
		}
		text = formatFiatRates(snap)
	} else {
		if !snap.HasCrypto() {
			return upstreamDownMessage, nil
		}
		text = formatCryptoRates(snap)
	}

	s.storeScreen(screen, snap, text)
	return text, nil
}

func (s *HandlerService) handleTrending(ctx context.Context, arg string, _ int64) (string, error) {
	kind := strings.TrimSpace(strings.ToLower(arg))
	if kind != "gainers" && kind != "losers" && kind != "popular" {
		return "Usage: /trending gainers|losers|popular", nil
	}

	trends, err := s.trends.Trending(ctx)
	if err != nil {
		return conversionErrorMessage(err), nil
	}
	snap := s.cache.Snapshot()

	screen := "trending_" + kind
	if text, ok := s.cachedScreen(screen, snap); ok {
		return text, nil
	}

	var text string
	switch kind {
	case "gainers":
		text = formatTrendList(trends.Gainers, "📈 Top gainers (24h)")
	case "losers":
		text = formatTrendList(trends.Losers, "📉 Top losers (24h)")
	case "popular":
		text = formatPopular(trends.Popular, snap)
	}

	s.storeScreen(screen, snap, text)
	return text, nil
}

func (s *HandlerService) handleRefresh(ctx context.Context, _ string, _ int64) (string, error) {
	s.cache.ForceRefresh(ctx)
	snap := s.cache.Snapshot()
	if !snap.HasFiat() && !snap.HasCrypto() {
		return upstreamDownMessage, nil
	}
	return ratesUpdatedMessage, nil
}

func (s *HandlerService) handleCurrencies(_ context.Context, _ string, _ int64) (string, error) {
	return formatCurrencyCatalog(), nil
}

func (s *HandlerService) handleSetFiat(ctx context.Context, arg string, userID int64) (string, error) {
	key, ok := currency.Lookup(arg)
	if !ok || !key.IsFiat() {
		return "That is not a fiat currency I support. See /currencies", nil
	}

	rec, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		return cannotLoadProfileMessage, errors.Wrap(err, "handle setfiat")
	}
	rec.SetDefaultFiat(key.Code)
	if err = s.storage.SaveByID(ctx, userID, rec); err != nil {
		return cannotSaveProfileMessage, errors.Wrap(err, "handle setfiat")
	}
	return "Default fiat set to " + key.Code + " ✅", nil
}

func (s *HandlerService) handleSetCrypto(ctx context.Context, arg string, userID int64) (string, error) {
	key, ok := currency.Lookup(arg)
	if !ok || !key.IsCrypto() {
		return "That is not a crypto I support. See /currencies", nil
	}

	rec, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		return cannotLoadProfileMessage, errors.Wrap(err, "handle setcrypto")
	}
	rec.SetDefaultCrypto(key.Code)
	if err = s.storage.SaveByID(ctx, userID, rec); err != nil {
		return cannotSaveProfileMessage, errors.Wrap(err, "handle setcrypto")
	}
	meta, _ := currency.MetaOf(key)
	return "Default crypto set to " + meta.Symbol + " ✅", nil
}

func (s *HandlerService) handleFavorite(ctx context.Context, arg string, userID int64) (string, error) {
	key, ok := currency.Lookup(arg)
	if !ok {
		return unknownCurrencyMessage, nil
	}

	rec, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		return cannotLoadProfileMessage, errors.Wrap(err, "handle favorite")
	}
	added := rec.ToggleFavorite(key.Code)
	if err = s.storage.SaveByID(ctx, userID, rec); err != nil {
		return cannotSaveProfileMessage, errors.Wrap(err, "handle favorite")
	}

	name := key.Code
	if meta, ok := currency.MetaOf(key); ok {
		name = meta.Symbol
	}
	if added {
		return "Added " + name + " to favorites ⭐", nil
	}
	return "Removed " + name + " from favorites", nil
}

func (s *HandlerService) handleFavorites(ctx context.Context, _ string, userID int64) (string, error) {
	rec, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		return cannotLoadProfileMessage, errors.Wrap(err, "handle favorites")
	}
	if len(rec.Favorites) == 0 {
		return noFavoritesMessage, nil
	}

	s.cache.EnsureFresh(ctx)
	snap := s.cache.Snapshot()
	return formatFavorites(rec.Favorites, snap), nil
}

// handleNoCommand parses free text like "100 usd to eur" and otherwise
// nudges the user towards /help.
func (s *HandlerService) handleNoCommand(ctx context.Context, arg string, _ int64) (string, error) {
	amount, from, to, ok := parseFreeTextConversion(arg)
	if !ok {
		return dontUnderstandMessage, nil
	}
	return s.convert(ctx, amount, from, to)
}

func (s *HandlerService) cachedScreen(screen string, snap rates.Snapshot) (string, bool) {
	if s.screens == nil || snap.FetchedAt().IsZero() {
		return "", false
	}
	text, err := s.screens.GetScreen(screen, snap.FetchedAt().Unix())
	if err != nil || text == "" {
		return "", false
	}
	return text, true
}

func (s *HandlerService) storeScreen(screen string, snap rates.Snapshot, text string) {
	if s.screens == nil || snap.FetchedAt().IsZero() {
		return
	}
	// best effort, the screen can always be re-rendered
	_ = s.screens.CacheScreen(screen, snap.FetchedAt().Unix(), text)
}

func conversionErrorMessage(err error) string {
	var unknown *customerr.UnknownCurrencyError
	var missing *customerr.MissingRateError
	var unavailable *customerr.UpstreamUnavailableError
	var invalid *customerr.InvalidAmountError

	switch {
	case errors.As(err, &unknown):
		return unknownCurrencyMessage
	case errors.As(err, &missing):
		return missingRateMessage
	case errors.As(err, &unavailable):
		return upstreamDownMessage
	case errors.As(err, &invalid):
		return invalidAmountMessage
	default:
		return somethingWrongMessage
	}
}
