package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quote currencies
const (
	CurrencyUSD = "usd"
	CurrencyNGN = "ngn"
)

// Asset is a crypto asset users may save into
type Asset struct {
	Symbol      string `json:"symbol"`
	CoinGeckoID string `json:"coingeckoId"`
	Name        string `json:"name"`
}

// SupportedAssets is the single symbol table used by the ledger and valuation.
var SupportedAssets = []Asset{
	{Symbol: "BTC", CoinGeckoID: "bitcoin", Name: "Bitcoin"},
	{Symbol: "ETH", CoinGeckoID: "ethereum", Name: "Ethereum"},
	{Symbol: "USDT", CoinGeckoID: "tether", Name: "Tether"},
	{Symbol: "SOL", CoinGeckoID: "solana", Name: "Solana"},
	{Symbol: "BNB", CoinGeckoID: "binancecoin", Name: "BNB"},
	{Symbol: "XRP", CoinGeckoID: "ripple", Name: "XRP"},
	{Symbol: "PUMPAI", CoinGeckoID: "pumpai", Name: "PumpAI"},
	{Symbol: "HMSTR", CoinGeckoID: "hamster-kombat", Name: "Hamster Kombat"},
}

// LookupAsset resolves a symbol case-insensitively
func LookupAsset(symbol string) (Asset, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range SupportedAssets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

// SupportedSymbols lists the canonical symbols in table order
func SupportedSymbols() []string {
	out := make([]string, 0, len(SupportedAssets))
	for _, a := range SupportedAssets {
		out = append(out, a.Symbol)
	}
	return out
}

// AssetQuote holds prices of one asset keyed by lower-case currency code.
type AssetQuote struct {
	Symbol    string                     `json:"symbol"`
	Prices    map[string]decimal.Decimal `json:"prices"`
	Change24h map[string]float64         `json:"change24h,omitempty"`
}

// Price returns a positive price in currency
func (q AssetQuote) Price(currency string) (decimal.Decimal, bool) {
	p, ok := q.Prices[strings.ToLower(currency)]
	if !ok || !p.IsPositive() {
		return decimal.Zero, false
	}
	return p, true
}

// Change returns the 24h change in currency, if supplied
func (q AssetQuote) Change(currency string) (float64, bool) {
	c, ok := q.Change24h[strings.ToLower(currency)]
	return c, ok
}
