// Package middleware contains the cross-cutting HTTP middleware.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"bakery_quote_backend/platform/logger"
)

// RequestLogger assigns each request an ID and logs method, path, status and
// latency once the handler chain finishes.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.WithRequestID(requestID).HTTPRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}

// ipLimiter tracks one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucketEntry
	limit    rate.Limit
	burst    int
	lastSeen time.Duration
}

type bucketEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimit returns a per-IP rate limiting middleware allowing perMinute
// requests with a small burst. Stale buckets are evicted in the background.
func RateLimit(perMinute int, log *logger.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 30
	}
	l := &ipLimiter{
		buckets:  make(map[string]*bucketEntry),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute/6 + 1,
		lastSeen: 10 * time.Minute,
	}
	go l.janitor()

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			log.RateLimitExceeded(c.ClientIP(), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, slow down a little",
			})
			return
		}
		c.Next()
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	entry, ok := l.buckets[ip]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = entry
	}
	entry.seen = time.Now()
	l.mu.Unlock()
	return entry.limiter.Allow()
}

func (l *ipLimiter) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-l.lastSeen)
		l.mu.Lock()
		for ip, entry := range l.buckets {
			if entry.seen.Before(cutoff) {
				delete(l.buckets, ip)
			}
		}
		l.mu.Unlock()
	}
}
