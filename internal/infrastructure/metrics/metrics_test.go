package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestRecordDeposit_CountsBySymbol(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDeposit("BTC", decimal.NewFromInt(100))
	c.RecordDeposit("BTC", decimal.RequireFromString("50.5"))
	c.RecordDeposit("ETH", decimal.NewFromInt(10))

	counts := map[string]float64{}
	for _, m := range gather(t, reg, "savingz_deposits_total") {
		counts[labelValue(m, "symbol")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"BTC": 2, "ETH": 1}, counts)

	for _, m := range gather(t, reg, "savingz_deposited_usd_total") {
		if labelValue(m, "symbol") == "BTC" {
			assert.Equal(t, 150.5, m.GetCounter().GetValue())
		}
	}
}

func TestRecordOracleRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOracleRequest(OutcomeSuccess, 20*time.Millisecond)
	c.RecordOracleRequest(OutcomeRateLimited, 0)

	outcomes := map[string]float64{}
	for _, m := range gather(t, reg, "savingz_price_oracle_requests_total") {
		outcomes[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, outcomes[OutcomeSuccess])
	assert.Equal(t, 1.0, outcomes[OutcomeRateLimited])

	hist := gather(t, reg, "savingz_price_oracle_latency_seconds")
	require.Len(t, hist, 1)
	assert.Equal(t, uint64(1), hist[0].GetHistogram().GetSampleCount())
}

func TestRecordCachePushHTTPAndStreaks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPriceCache(true)
	c.RecordPriceCache(false)
	c.RecordPriceCache(false)
	c.RecordPush(3, 1)
	c.RecordHTTPRequest(http.MethodPost, "/api/v1/user/save", 200, 5*time.Millisecond)
	c.RecordStreakResets(4)

	cache := map[string]float64{}
	for _, m := range gather(t, reg, "savingz_price_cache_total") {
		cache[labelValue(m, "result")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"hit": 1, "miss": 2}, cache)

	push := map[string]float64{}
	for _, m := range gather(t, reg, "savingz_push_messages_total") {
		push[labelValue(m, "outcome")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"sent": 3, "failed": 1}, push)

	reqs := gather(t, reg, "savingz_http_requests_total")
	require.Len(t, reqs, 1)
	assert.Equal(t, "200", labelValue(reqs[0], "status"))
	assert.Equal(t, "/api/v1/user/save", labelValue(reqs[0], "route"))

	resets := gather(t, reg, "savingz_streak_resets_total")
	assert.Equal(t, 4.0, resets[0].GetCounter().GetValue())
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordDeposit("SOL", decimal.NewFromInt(1))

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Result().Body)
	assert.Contains(t, string(body), `savingz_deposits_total{symbol="SOL"} 1`)
}
