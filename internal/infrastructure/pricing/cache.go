package pricing

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/logger"
)

const cacheKeyPrefix = "prices:v1:"

// Oracle is implemented by CoinGeckoClient and CachedOracle
type Oracle interface {
	GetPrices(ctx context.Context, symbols []string, currencies []string) (map[string]entities.AssetQuote, error)
}

// Cache is the key/value store holding serialized quotes
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	IsMiss(err error) bool
}

const defaultFetchTimeout = 10 * time.Second

// CachedOracle serves quotes from the cache for ttl and collapses concurrent
// identical upstream requests into one call. The shared call is detached from
// every caller's cancellation and bounded by fetchTimeout instead.
type CachedOracle struct {
	next         Oracle
	cache        Cache
	ttl          time.Duration
	fetchTimeout time.Duration
	metrics      OracleMetrics
	group        singleflight.Group
}

// NewCachedOracle wraps next with a cache. A non-positive fetchTimeout falls
// back to 10s.
func NewCachedOracle(next Oracle, cache Cache, ttl, fetchTimeout time.Duration, m OracleMetrics) *CachedOracle {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &CachedOracle{next: next, cache: cache, ttl: ttl, fetchTimeout: fetchTimeout, metrics: m}
}

// GetPrices implements Oracle. When the upstream fails but some quotes were
// cached, the cached subset is returned without an error.
func (o *CachedOracle) GetPrices(ctx context.Context, symbols []string, currencies []string) (map[string]entities.AssetQuote, error) {
	currencies = normalizeCurrencies(currencies)
	quotes := make(map[string]entities.AssetQuote, len(symbols))
	var misses []string

	for _, s := range uniqueSymbols(symbols) {
		if q, ok := o.lookup(ctx, s, currencies); ok {
			quotes[s] = q
			o.recordCache(true)
			continue
		}
		o.recordCache(false)
		misses = append(misses, s)
	}
	if len(misses) == 0 {
		return quotes, nil
	}

	key := strings.Join(misses, ",") + "|" + strings.Join(currencies, ",")
	ch := o.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.fetchTimeout)
		defer cancel()
		fetched, err := o.next.GetPrices(fetchCtx, misses, currencies)
		if err != nil {
			return nil, err
		}
		for symbol, q := range fetched {
			o.store(fetchCtx, symbol, q)
		}
		return fetched, nil
	})

	var v interface{}
	var err error
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if len(quotes) > 0 {
			logger.Warn(ctx, "Price oracle unavailable, serving cached quotes", zap.Strings("missing", misses), zap.Error(err))
			return quotes, nil
		}
		return nil, err
	}
	for symbol, q := range v.(map[string]entities.AssetQuote) {
		quotes[symbol] = q
	}
	return quotes, nil
}

func (o *CachedOracle) lookup(ctx context.Context, symbol string, currencies []string) (entities.AssetQuote, bool) {
	if o.cache == nil {
		return entities.AssetQuote{}, false
	}
	raw, err := o.cache.Get(ctx, cacheKeyPrefix+symbol)
	if err != nil {
		if !o.cache.IsMiss(err) {
			logger.Debug(ctx, "Price cache read failed", zap.String("symbol", symbol), zap.Error(err))
		}
		return entities.AssetQuote{}, false
	}
	var q entities.AssetQuote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return entities.AssetQuote{}, false
	}
	for _, cur := range currencies {
		if _, ok := q.Prices[cur]; !ok {
			return entities.AssetQuote{}, false
		}
	}
	return q, true
}

func (o *CachedOracle) store(ctx context.Context, symbol string, q entities.AssetQuote) {
	if o.cache == nil || o.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, cacheKeyPrefix+symbol, string(raw), o.ttl); err != nil {
		logger.Debug(ctx, "Price cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

func (o *CachedOracle) recordCache(hit bool) {
	if o.metrics != nil {
		o.metrics.RecordPriceCache(hit)
	}
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		asset, ok := entities.LookupAsset(s)
		if !ok || seen[asset.Symbol] {
			continue
		}
		seen[asset.Symbol] = true
		out = append(out, asset.Symbol)
	}
	sort.Strings(out)
	return out
}
