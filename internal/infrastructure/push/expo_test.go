package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"savingz.backend/internal/config"
	"savingz.backend/internal/domain/entities"
)

func newExpo(t *testing.T, handler http.HandlerFunc) *ExpoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewExpoClient(config.PushConfig{ExpoURL: srv.URL, AccessToken: "expo-secret", Timeout: time.Second}, srv.Client())
}

func messages(n int) []entities.PushMessage {
	out := make([]entities.PushMessage, n)
	for i := range out {
		out[i] = entities.PushMessage{To: fmt.Sprintf("ExponentPushToken[%d]", i), Title: "Save", Body: "Keep your streak"}
	}
	return out
}

func TestExpoClient_SendBatchesAndCountsTickets(t *testing.T) {
	var requests atomic.Int32
	client := newExpo(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "Bearer expo-secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var batch []map[string]string
		require.NoError(t, json.Unmarshal(body, &batch))
		assert.LessOrEqual(t, len(batch), maxBatch)
		assert.Equal(t, "Save", batch[0]["title"])
		assert.Equal(t, "Keep your streak", batch[0]["body"])

		tickets := make([]map[string]interface{}, len(batch))
		for i := range tickets {
			tickets[i] = map[string]interface{}{"status": "ok", "id": fmt.Sprint(i)}
		}
		if len(batch) < maxBatch {
			tickets[0] = map[string]interface{}{
				"status":  "error",
				"message": "not registered",
				"details": map[string]string{"error": "DeviceNotRegistered"},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": tickets})
	})

	report, err := client.Send(context.Background(), messages(150))
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, 149, report.Sent)
	assert.Equal(t, 1, report.Failed)
}

func TestExpoClient_FailedBatch(t *testing.T) {
	client := newExpo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"code":"UNAUTHORIZED","message":"bad access token"}]}`))
	})

	report, err := client.Send(context.Background(), messages(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad access token")
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 3, report.Failed)
}

func TestExpoClient_SendNothing(t *testing.T) {
	client := newExpo(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	report, err := client.Send(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, entities.PushReport{}, report)
}
