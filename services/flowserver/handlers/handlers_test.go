// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbarsoum1/langflow/services/flowserver/cache"
	"github.com/vbarsoum1/langflow/services/flowserver/components"
	"github.com/vbarsoum1/langflow/services/flowserver/datatypes"
	"github.com/vbarsoum1/langflow/services/flowserver/graph"
	"github.com/vbarsoum1/langflow/services/flowserver/middleware"
	"github.com/vbarsoum1/langflow/services/flowserver/tasks"
	"github.com/vbarsoum1/langflow/services/flowserver/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryFlowStore is an in-memory flows.Store for handler tests.
type memoryFlowStore struct {
	mu    sync.Mutex
	flows map[string]*datatypes.Flow
}

func newMemoryFlowStore() *memoryFlowStore {
	return &memoryFlowStore{flows: map[string]*datatypes.Flow{}}
}

func (s *memoryFlowStore) GetFlow(_ context.Context, id, ownerID string) (*datatypes.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[id]
	if !ok || flow.OwnerID != ownerID {
		return nil, datatypes.ErrNotFound
	}
	return flow, nil
}

func (s *memoryFlowStore) SaveFlow(_ context.Context, flow *datatypes.Flow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flow.ID] = flow
	return nil
}

func (s *memoryFlowStore) DeleteFlow(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[id]
	if !ok || flow.OwnerID != ownerID {
		return datatypes.ErrNotFound
	}
	delete(s.flows, id)
	return nil
}

// testEnv bundles the wired handlers for one test.
type testEnv struct {
	router *gin.Engine
	store  *memoryFlowStore
}

func newTestEnv() *testEnv {
	store := newMemoryFlowStore()
	runner := tasks.NewRunner(cache.New(cache.NewMemoryStore(0)), graph.EchoEvaluator{})
	backend := tasks.NewLocalBackend(runner, nil)
	dispatcher := tasks.NewDispatcher(backend, nil)
	tracker := tasks.NewTracker(backend)

	router := gin.New()
	v1 := router.Group("/v1")
	v1.Use(middleware.APIKeyAuth(middleware.NopAPIKeyProvider{}))
	v1.POST("/process/:flowId", ProcessFlow(store, dispatcher))
	v1.GET("/task/:taskId/status", GetTaskStatus(tracker))
	v1.POST("/flows", CreateFlow(store))
	v1.GET("/flows/:flowId", GetFlow(store))
	v1.DELETE("/flows/:flowId", DeleteFlow(store))

	return &testEnv{router: router, store: store}
}

// seedFlow stores a flow whose nodeA carries a template field "text".
func (e *testEnv) seedFlow(t *testing.T, ownerID string) string {
	t.Helper()
	id := uuid.NewString()
	flow := &datatypes.Flow{
		ID:      id,
		Name:    "test flow",
		OwnerID: ownerID,
		Data: datatypes.GraphDefinition{
			"nodes": []any{
				map[string]any{
					"id": "nodeA",
					"data": map[string]any{
						"node": map[string]any{
							"template": map[string]any{
								"text": map[string]any{"type": "str", "value": "original"},
							},
						},
					},
				},
			},
		},
	}
	require.NoError(t, e.store.SaveFlow(context.Background(), flow))
	return id
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProcessFlowSyncWithTweaks(t *testing.T) {
	env := newTestEnv()
	flowID := env.seedFlow(t, "local")

	w := postJSON(env.router, "/v1/process/"+flowID, map[string]any{
		"inputs": map[string]any{"q": "hello"},
		"tweaks": map[string]any{"nodeA.text": "tweaked"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp datatypes.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.SessionID)

	// The tweaked value is visible in the evaluation output.
	payload, _ := json.Marshal(resp.Result)
	assert.Contains(t, string(payload), "tweaked")
	assert.NotContains(t, string(payload), "original")

	// The stored flow is untouched.
	flow, err := env.store.GetFlow(context.Background(), flowID, "local")
	require.NoError(t, err)
	data, _ := json.Marshal(flow.Data)
	assert.Contains(t, string(data), "original")
}

func TestProcessFlowAsyncThenStatus(t *testing.T) {
	env := newTestEnv()
	flowID := env.seedFlow(t, "local")

	w := postJSON(env.router, "/v1/process/"+flowID, map[string]any{"sync": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp datatypes.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, []any{"pending", "running"}, resp.Result)

	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/v1/task/"+resp.ID+"/status", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return false
		}
		var status datatypes.TaskStatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.Status == "succeeded" && status.Result != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProcessFlowMalformedIDIsBadRequest(t *testing.T) {
	env := newTestEnv()

	w := postJSON(env.router, "/v1/process/not-a-uuid", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessFlowUnknownIDIsNotFound(t *testing.T) {
	env := newTestEnv()

	w := postJSON(env.router, "/v1/process/"+uuid.NewString(), map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessFlowForeignFlowIsNotFound(t *testing.T) {
	env := newTestEnv()
	flowID := env.seedFlow(t, "someone-else")

	w := postJSON(env.router, "/v1/process/"+flowID, map[string]any{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessFlowInvalidTweaksStillRuns(t *testing.T) {
	env := newTestEnv()
	flowID := env.seedFlow(t, "local")

	w := postJSON(env.router, "/v1/process/"+flowID, map[string]any{
		"tweaks": map[string]any{
			"nodeA.text":    "tweaked",
			"ghost.field":   1,
			"nodeA.missing": 2,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp datatypes.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	payload, _ := json.Marshal(resp.Result)
	assert.Contains(t, string(payload), "tweaked")
}

func TestProcessFlowEmptyBody(t *testing.T) {
	env := newTestEnv()
	flowID := env.seedFlow(t, "local")

	req := httptest.NewRequest(http.MethodPost, "/v1/process/"+flowID, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestTaskStatusUnknownIsNotFound(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/v1/task/"+uuid.NewString()+"/status", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlowCRUD(t *testing.T) {
	env := newTestEnv()

	w := postJSON(env.router, "/v1/flows", map[string]any{
		"name": "my flow",
		"data": map[string]any{"nodes": []any{}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created datatypes.Flow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	req := httptest.NewRequest(http.MethodGet, "/v1/flows/"+created.ID, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/flows/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/flows/"+created.ID, nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAllComponents(t *testing.T) {
	router := gin.New()
	router.GET("/all", GetAllComponents(components.NewCatalog(nil, nil)))

	req := httptest.NewRequest(http.MethodGet, "/all", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var catalog map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.Contains(t, catalog, "llms")
}

func TestCustomComponentEndpoint(t *testing.T) {
	router := gin.New()
	router.POST("/custom_component", CustomComponent())

	code := "class Echo(CustomComponent):\n    def build(self, text: str) -> str:\n        return text\n"
	w := postJSON(router, "/custom_component", map[string]any{"code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Echo")

	w = postJSON(router, "/custom_component", map[string]any{"code": "not a component"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadFile(t *testing.T) {
	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)

	router := gin.New()
	router.POST("/upload/:flowId", UploadFile(store))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/flow-1", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp datatypes.UploadFileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "flow-1", resp.FlowID)
	assert.Contains(t, resp.FilePath, "flow-1")
}

func TestVersionAndHealth(t *testing.T) {
	router := gin.New()
	router.GET("/version", GetVersion)
	router.GET("/health", HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "version")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
