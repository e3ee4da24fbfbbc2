// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds launch traffic per client.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client. Zero disables
	// the limiter.
	RequestsPerSecond float64

	// Burst is the short-term allowance. Defaults to twice the rate,
	// minimum 1.
	Burst int
}

// RateLimit applies a per-client token bucket keyed by authenticated owner
// when present, client IP otherwise. Graph evaluation is expensive enough
// that one runaway client should not starve the rest.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if config.Burst <= 0 {
		config.Burst = int(config.RequestsPerSecond * 2)
		if config.Burst < 1 {
			config.Burst = 1
		}
	}

	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	return func(c *gin.Context) {
		key := c.ClientIP()
		if user := GetUser(c); user != nil {
			key = user.OwnerID
		}

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
