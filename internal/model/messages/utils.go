package messages

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"max.ks1230/exchange-bot/internal/entity/currency"
	"max.ks1230/exchange-bot/internal/model/rates"
)

const commandParts = 2

const asOfLayout = "15:04 02.01.2006"

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts && strings.HasPrefix(text, "/") {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

// freeTextPattern matches things like "100 usd to eur", "2 eth -> btc",
// "0.5 btc → rub".
var freeTextPattern = regexp.MustCompile(
	`(?i)^(\d+(?:[.,]\d+)?)\s*([a-z0-9-]+)(?:\s+(?:to|в)\s+|\s*(?:->|→)\s*)([a-z0-9-]+)$`)

func parseFreeTextConversion(text string) (amount float64, from, to string, ok bool) {
	match := freeTextPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, "", "", false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return 0, "", "", false
	}
	return amount, match[2], match[3], true
}

// label is what a currency is called in replies: the ISO code for fiat,
// the ticker for crypto.
func label(key currency.Key) string {
	if key.IsFiat() {
		return key.Code
	}
	if meta, ok := currency.MetaOf(key); ok {
		return meta.Symbol
	}
	return key.Code
}

func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func formatResult(res rates.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s %s = %s %s\n",
		formatNumber(res.Amount), label(res.From),
		formatNumber(res.Output), label(res.To))
	fmt.Fprintf(&b, "Rate: 1 %s = %s %s", label(res.From), formatNumber(res.Rate), label(res.To))
	if !res.AsOf.IsZero() {
		b.WriteString("\n" + formatAsOf(res.AsOf))
	}
	return b.String()
}

func formatAsOf(t time.Time) string {
	return "🕒 Rates as of " + t.Format(asOfLayout)
}

func changeArrow(change float64) string {
	switch {
	case change > 0:
		return "📈"
	case change < 0:
		return "📉"
	default:
		return "➡️"
	}
}

func formatFiatRates(snap rates.Snapshot) string {
	codes := currency.FiatCodes()[1:]
	sort.Strings(codes)

	var b strings.Builder
	b.WriteString("💰 Fiat rates (per 1 " + currency.BaseCurrency + ")\n\n")
	for _, code := range codes {
		rate, ok := snap.FiatRate(code)
		if !ok {
			continue
		}
		meta, _ := currency.MetaOf(currency.FiatKey(code))
		fmt.Fprintf(&b, "%s %s: %.4f\n", meta.Emoji, code, rate)
	}
	b.WriteString("\n" + formatAsOf(snap.FetchedAt()))
	return b.String()
}

func formatCryptoRates(snap rates.Snapshot) string {
	type row struct {
		meta  currency.Meta
		quote currency.Quote
	}
	rows := make([]row, 0, len(snap.Quotes()))
	for _, id := range currency.CryptoIDs() {
		quote, ok := snap.Quote(id)
		if !ok {
			continue
		}
		meta, _ := currency.MetaOf(currency.CryptoKey(id))
		rows = append(rows, row{meta: meta, quote: quote})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].quote.USD > rows[j].quote.USD
	})

	var b strings.Builder
	b.WriteString("₿ Crypto prices (USD)\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s: $%.2f", r.meta.Emoji, r.meta.Symbol, r.quote.USD)
		if r.quote.Change24h != nil {
			fmt.Fprintf(&b, " %s %+.2f%%", changeArrow(*r.quote.Change24h), *r.quote.Change24h)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + formatAsOf(snap.FetchedAt()))
	return b.String()
}

func formatTrendList(entries []rates.TrendEntry, title string) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s: $%.2f %s %+.2f%%\n",
			i+1, e.Symbol, e.PriceUSD, changeArrow(e.Change24h), e.Change24h)
	}
	if len(entries) == 0 {
		b.WriteString("No data yet\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPopular(keys []currency.Key, snap rates.Snapshot) string {
	var b strings.Builder
	b.WriteString("🔥 Popular currencies\n\n")
	for _, key := range keys {
		meta, ok := currency.MetaOf(key)
		if !ok {
			continue
		}
		quote, ok := snap.Quote(key.Code)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s %s: $%.2f", meta.Emoji, meta.Symbol, quote.USD)
		if quote.Change24h != nil {
			fmt.Fprintf(&b, " %s %+.2f%%", changeArrow(*quote.Change24h), *quote.Change24h)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatFavorites(favorites []string, snap rates.Snapshot) string {
	var b strings.Builder
	b.WriteString("⭐ Your favorites\n\n")
	for _, fav := range favorites {
		key, ok := currency.Lookup(fav)
		if !ok {
			continue
		}
		meta, _ := currency.MetaOf(key)
		if key.IsFiat() {
			if rate, ok := snap.FiatRate(key.Code); ok {
				fmt.Fprintf(&b, "%s %s: %.4f per %s\n",
					meta.Emoji, key.Code, rate, currency.BaseCurrency)
			} else {
				fmt.Fprintf(&b, "%s %s: no rate\n", meta.Emoji, key.Code)
			}
			continue
		}
		if quote, ok := snap.Quote(key.Code); ok {
			fmt.Fprintf(&b, "%s %s: $%.2f", meta.Emoji, meta.Symbol, quote.USD)
			if quote.Change24h != nil {
				fmt.Fprintf(&b, " %s %+.2f%%", changeArrow(*quote.Change24h), *quote.Change24h)
			}
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "%s %s: no price\n", meta.Emoji, meta.Symbol)
		}
	}
	b.WriteString("\n" + formatAsOf(snap.FetchedAt()))
	return b.String()
}

func formatCurrencyCatalog() string {
	fiatCodes := currency.FiatCodes()
	sort.Strings(fiatCodes)

	var b strings.Builder
	b.WriteString("💰 Fiat:\n")
	for _, code := range fiatCodes {
		meta, _ := currency.MetaOf(currency.FiatKey(code))
		fmt.Fprintf(&b, "%s %s - %s\n", meta.Emoji, code, meta.Name)
	}

	type cryptoRow struct {
		symbol, name, emoji string
	}
	rows := make([]cryptoRow, 0)
	for _, id := range currency.CryptoIDs() {
		meta, _ := currency.MetaOf(currency.CryptoKey(id))
		rows = append(rows, cryptoRow{symbol: meta.Symbol, name: meta.Name, emoji: meta.Emoji})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].symbol < rows[j].symbol })

	b.WriteString("\n₿ Crypto:\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s - %s\n", r.emoji, r.symbol, r.name)
	}
	return strings.TrimRight(b.String(), "\n")
}
