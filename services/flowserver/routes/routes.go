// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbarsoum1/langflow/services/flowserver/components"
	"github.com/vbarsoum1/langflow/services/flowserver/flows"
	"github.com/vbarsoum1/langflow/services/flowserver/handlers"
	"github.com/vbarsoum1/langflow/services/flowserver/middleware"
	"github.com/vbarsoum1/langflow/services/flowserver/tasks"
	"github.com/vbarsoum1/langflow/services/flowserver/uploads"
)

// Deps carries everything the route table wires into handlers.
type Deps struct {
	FlowStore    flows.Store
	Dispatcher   *tasks.Dispatcher
	Tracker      *tasks.Tracker
	Catalog      *components.Catalog
	Uploads      *uploads.Store
	AuthProvider middleware.APIKeyProvider
	RateLimit    middleware.RateLimitConfig
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/version", handlers.GetVersion)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.AuthProvider == nil {
		deps.AuthProvider = middleware.NopAPIKeyProvider{}
	}

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(deps.AuthProvider))
	{
		limited := v1.Group("")
		limited.Use(middleware.RateLimit(deps.RateLimit))
		{
			limited.POST("/process/:flowId", handlers.ProcessFlow(deps.FlowStore, deps.Dispatcher))
			// Old clients still call predict; same handler.
			limited.POST("/predict/:flowId", handlers.ProcessFlow(deps.FlowStore, deps.Dispatcher))
		}

		v1.GET("/task/:taskId/status", handlers.GetTaskStatus(deps.Tracker))
		v1.GET("/all", handlers.GetAllComponents(deps.Catalog))
		v1.POST("/custom_component", handlers.CustomComponent())
		v1.POST("/upload/:flowId", handlers.UploadFile(deps.Uploads))

		// Flow administration routes
		flowAdmin := v1.Group("/flows")
		{
			flowAdmin.POST("", handlers.CreateFlow(deps.FlowStore))
			flowAdmin.GET("/:flowId", handlers.GetFlow(deps.FlowStore))
			flowAdmin.DELETE("/:flowId", handlers.DeleteFlow(deps.FlowStore))
		}
	}
}
