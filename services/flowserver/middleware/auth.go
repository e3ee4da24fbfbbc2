// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for flowserver.
//
// The auth middleware extracts an API key from the x-api-key header (or
// query parameter, for clients that cannot set headers), validates it via
// the configured APIKeyProvider, and stores the resulting user in the Gin
// context for downstream handlers.
//
// With NopAPIKeyProvider (default), all requests authenticate as a single
// local user. This keeps single-user deployments working with no key
// infrastructure; multi-user deployments plug in a real provider.
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
)

// userKey is the context key for the authenticated user.
const userKey = "langflow_user"

// apiKeyHeader and apiKeyQuery are where clients may present a key.
const (
	apiKeyHeader = "x-api-key"
	apiKeyQuery  = "x-api-key"
)

// User is the authenticated caller. OwnerID scopes flow access.
type User struct {
	OwnerID  string
	Username string
}

// APIKeyProvider validates API keys.
type APIKeyProvider interface {
	// Validate resolves a key to a user, or ErrUnauthorized.
	Validate(ctx context.Context, key string) (*User, error)
}

// NopAPIKeyProvider accepts every request as one local user.
type NopAPIKeyProvider struct{}

// Validate implements APIKeyProvider.
func (NopAPIKeyProvider) Validate(context.Context, string) (*User, error) {
	return &User{OwnerID: "local", Username: "local-user"}, nil
}

// SetUser stores the authenticated user in the Gin context.
func SetUser(c *gin.Context, user *User) {
	c.Set(userKey, user)
}

// GetUser retrieves the authenticated user, or nil.
func GetUser(c *gin.Context) *User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, ok := value.(*User)
	if !ok {
		return nil
	}
	return user
}

// APIKeyAuth validates the request's API key and stores the user in the
// context. Requests with no resolvable user are rejected with 401.
func APIKeyAuth(provider APIKeyProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			key = c.Query(apiKeyQuery)
		}

		user, err := provider.Validate(c.Request.Context(), key)
		if err != nil || user == nil {
			if err != nil && !datatypes.IsUnauthorized(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"detail": "authentication failed",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Invalid API Key",
			})
			return
		}

		SetUser(c, user)
		c.Next()
	}
}
