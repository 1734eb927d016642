package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"savingz.backend/pkg/logger"
	"savingz.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker  = "processing"
	maxIdempotencyKey = 128
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response of a request whose
// Idempotency-Key was already processed for the same caller. Without redis
// the request simply runs.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "Idempotency-Key is too long",
			})
			return
		}

		uid, _ := GetUID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s", uid, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "CONFLICT",
				"message": "Request already in progress",
			})
			return
		case err == nil:
			status, body := decodeStoredResponse(val)
			c.Header("X-Idempotency-Hit", "true")
			c.Data(status, "application/json; charset=utf-8", []byte(body))
			c.Abort()
			return
		case errors.Is(err, redis.ErrNotInitialized):
			c.Next()
			return
		case !redis.IsNil(err):
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "CONFLICT",
				"message": "Request already in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			if err := redisSet(ctx, storageKey, encodeStoredResponse(status, w.body.String()), RetentionDuration); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// a failed attempt may be retried with the same key
		_ = redisDel(ctx, storageKey)
	}
}

func encodeStoredResponse(status int, body string) string {
	return strconv.Itoa(status) + ":" + body
}

func decodeStoredResponse(val string) (int, string) {
	if i := strings.IndexByte(val, ':'); i > 0 {
		if status, err := strconv.Atoi(val[:i]); err == nil {
			return status, val[i+1:]
		}
	}
	return http.StatusOK, val
}
