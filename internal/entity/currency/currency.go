package currency

import "strings"

// Class tells whether a currency is fiat or crypto. A key is exactly one of
// the two; all conversion logic switches on the class, never on raw strings.
type Class int

const (
	Fiat Class = iota
	Crypto
)

func (c Class) String() string {
	if c == Fiat {
		return "fiat"
	}
	return "crypto"
}

// Key is the canonical identifier of one supported currency: an uppercase
// ISO-like code for fiat, a provider-stable lowercase id for crypto
// (e.g. "bitcoin", not "BTC").
type Key struct {
	Class Class
	Code  string
}

func FiatKey(code string) Key { return Key{Class: Fiat, Code: code} }

func CryptoKey(id string) Key { return Key{Class: Crypto, Code: id} }

func (k Key) IsFiat() bool { return k.Class == Fiat }

func (k Key) IsCrypto() bool { return k.Class == Crypto }

// Meta is the immutable registry entry for a currency. Populated once from
// the static tables below, never mutated.
type Meta struct {
	Name   string
	Symbol string
	Emoji  string
	Class  Class
}

const BaseCurrency = "USD"

var fiatMeta = map[string]Meta{
	"USD": {Name: "US Dollar", Symbol: "$", Emoji: "🇺🇸", Class: Fiat},
	"EUR": {Name: "Euro", Symbol: "€", Emoji: "🇪🇺", Class: Fiat},
	"RUB": {Name: "Russian Ruble", Symbol: "₽", Emoji: "🇷🇺", Class: Fiat},
	"GBP": {Name: "British Pound", Symbol: "£", Emoji: "🇬🇧", Class: Fiat},
	"JPY": {Name: "Japanese Yen", Symbol: "¥", Emoji: "🇯🇵", Class: Fiat},
	"CNY": {Name: "Chinese Yuan", Symbol: "¥", Emoji: "🇨🇳", Class: Fiat},
	"CAD": {Name: "Canadian Dollar", Symbol: "C$", Emoji: "🇨🇦", Class: Fiat},
	"AUD": {Name: "Australian Dollar", Symbol: "A$", Emoji: "🇦🇺", Class: Fiat},
	"CHF": {Name: "Swiss Franc", Symbol: "CHF", Emoji: "🇨🇭", Class: Fiat},
	"KZT": {Name: "Kazakhstani Tenge", Symbol: "₸", Emoji: "🇰🇿", Class: Fiat},
	"UAH": {Name: "Ukrainian Hryvnia", Symbol: "₴", Emoji: "🇺🇦", Class: Fiat},
	"BYN": {Name: "Belarusian Ruble", Symbol: "Br", Emoji: "🇧🇾", Class: Fiat},
}

var cryptoMeta = map[string]Meta{
	"bitcoin":     {Name: "Bitcoin", Symbol: "BTC", Emoji: "₿", Class: Crypto},
	"ethereum":    {Name: "Ethereum", Symbol: "ETH", Emoji: "Ξ", Class: Crypto},
	"binancecoin": {Name: "Binance Coin", Symbol: "BNB", Emoji: "🪙", Class: Crypto},
	"cardano":     {Name: "Cardano", Symbol: "ADA", Emoji: "🔺", Class: Crypto},
	"solana":      {Name: "Solana", Symbol: "SOL", Emoji: "◎", Class: Crypto},
	"ripple":      {Name: "XRP", Symbol: "XRP", Emoji: "💧", Class: Crypto},
	"polkadot":    {Name: "Polkadot", Symbol: "DOT", Emoji: "●", Class: Crypto},
	"dogecoin":    {Name: "Dogecoin", Symbol: "DOGE", Emoji: "🐕", Class: Crypto},
	"polygon":     {Name: "Polygon", Symbol: "MATIC", Emoji: "🔷", Class: Crypto},
	"litecoin":    {Name: "Litecoin", Symbol: "LTC", Emoji: "Ł", Class: Crypto},
	"chainlink":   {Name: "Chainlink", Symbol: "LINK", Emoji: "🔗", Class: Crypto},
	"avalanche-2": {Name: "Avalanche", Symbol: "AVAX", Emoji: "🏔️", Class: Crypto},
}

// tickerToID maps uppercase crypto tickers to canonical ids, built once at
// process start.
var tickerToID = func() map[string]string {
	m := make(map[string]string, len(cryptoMeta))
	for id, meta := range cryptoMeta {
		m[strings.ToUpper(meta.Symbol)] = id
	}
	return m
}()

// Lookup normalizes a raw user-typed identifier into a canonical Key.
// Resolution order: fiat code, then crypto ticker, then literal lowercase
// crypto id. A ticker colliding with a fiat code therefore always resolves
// as fiat; that is a documented property of the catalog, not a bug.
func Lookup(raw string) (Key, bool) {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := fiatMeta[upper]; ok {
		return FiatKey(upper), true
	}
	if id, ok := tickerToID[upper]; ok {
		return CryptoKey(id), true
	}
	lower := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := cryptoMeta[lower]; ok {
		return CryptoKey(lower), true
	}
	return Key{}, false
}

func MetaOf(key Key) (Meta, bool) {
	if key.IsFiat() {
		m, ok := fiatMeta[key.Code]
		return m, ok
	}
	m, ok := cryptoMeta[key.Code]
	return m, ok
}

// FiatCodes returns the supported fiat codes, base currency first.
func FiatCodes() []string {
	codes := make([]string, 0, len(fiatMeta))
	codes = append(codes, BaseCurrency)
	for code := range fiatMeta {
		if code != BaseCurrency {
			codes = append(codes, code)
		}
	}
	return codes
}

// CryptoIDs returns the canonical ids of all supported cryptos.
func CryptoIDs() []string {
	ids := make([]string, 0, len(cryptoMeta))
	for id := range cryptoMeta {
		ids = append(ids, id)
	}
	return ids
}
