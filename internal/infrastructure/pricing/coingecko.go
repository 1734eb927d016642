package pricing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
	"savingz.backend/internal/config"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/internal/infrastructure/metrics"
)

const maxResponseBytes = 1 << 20

// OracleMetrics is the subset of the metrics collector used by the pricing clients
type OracleMetrics interface {
	RecordOracleRequest(outcome string, duration time.Duration)
	RecordPriceCache(hit bool)
}

// CoinGeckoClient reads spot prices from the CoinGecko /simple/price endpoint.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    OracleMetrics
}

// NewCoinGeckoClient creates a rate-limited CoinGecko client
func NewCoinGeckoClient(cfg config.PriceOracleConfig, httpClient *http.Client, m OracleMetrics) *CoinGeckoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = max(1, cfg.RequestsPerMinute/10)
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    m,
	}
}

// GetPrices returns quotes keyed by canonical symbol. Symbols the provider
// does not price are omitted; unknown symbols are ignored.
func (c *CoinGeckoClient) GetPrices(ctx context.Context, symbols []string, currencies []string) (map[string]entities.AssetQuote, error) {
	byID := make(map[string]string, len(symbols))
	ids := make([]string, 0, len(symbols))
	for _, s := range symbols {
		asset, ok := entities.LookupAsset(s)
		if !ok {
			continue
		}
		if _, seen := byID[asset.CoinGeckoID]; seen {
			continue
		}
		byID[asset.CoinGeckoID] = asset.Symbol
		ids = append(ids, asset.CoinGeckoID)
	}
	if len(ids) == 0 {
		return map[string]entities.AssetQuote{}, nil
	}
	currencies = normalizeCurrencies(currencies)

	if err := c.limiter.Wait(ctx); err != nil {
		c.record(metrics.OutcomeRateLimited, 0)
		return nil, fmt.Errorf("price oracle rate limit: %w", err)
	}

	start := time.Now()
	body, err := c.fetch(ctx, ids, currencies)
	if err != nil {
		c.record(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	c.record(metrics.OutcomeSuccess, time.Since(start))

	return parseSimplePrice(body, byID, currencies), nil
}

func (c *CoinGeckoClient) fetch(ctx context.Context, ids, currencies []string) ([]byte, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.Join(currencies, ","))
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price oracle request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read price oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price oracle returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("price oracle returned invalid json")
	}
	return body, nil
}

// parseSimplePrice reads {"<id>": {"<cur>": n, "<cur>_24h_change": n}}.
func parseSimplePrice(body []byte, byID map[string]string, currencies []string) map[string]entities.AssetQuote {
	quotes := make(map[string]entities.AssetQuote, len(byID))
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		symbol, ok := byID[key.String()]
		if !ok || !value.IsObject() {
			return true
		}
		q := entities.AssetQuote{
			Symbol:    symbol,
			Prices:    map[string]decimal.Decimal{},
			Change24h: map[string]float64{},
		}
		for _, cur := range currencies {
			price := value.Get(cur)
			if price.Type != gjson.Number {
				continue
			}
			d, err := decimal.NewFromString(price.Raw)
			if err != nil || !d.IsPositive() {
				continue
			}
			q.Prices[cur] = d
			if change := value.Get(cur + "_24h_change"); change.Type == gjson.Number {
				q.Change24h[cur] = change.Float()
			}
		}
		if len(q.Prices) > 0 {
			quotes[symbol] = q
		}
		return true
	})
	return quotes
}

func (c *CoinGeckoClient) record(outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordOracleRequest(outcome, d)
	}
}

func normalizeCurrencies(currencies []string) []string {
	out := make([]string, 0, len(currencies)+1)
	seen := map[string]bool{}
	for _, cur := range append([]string{entities.CurrencyUSD}, currencies...) {
		cur = strings.ToLower(strings.TrimSpace(cur))
		if cur == "" || seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
	}
	return out
}
