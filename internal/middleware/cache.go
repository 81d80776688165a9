package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/cache"
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache serves successful GET responses from the cache and stores misses for ttl.
func ResponseCache(store cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := cache.ResponseKey(c.Request.URL.Path, c.Request.URL.RawQuery)

		body, err := store.Get(ctx, key)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("cache read failed", "key", key, "error", err)
		}

		c.Header("X-Cache", "MISS")
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() != http.StatusOK {
			return
		}
		if err := store.Set(ctx, key, rec.body.Bytes(), ttl); err != nil {
			slog.Warn("cache write failed", "key", key, "error", err)
		}
	}
}
