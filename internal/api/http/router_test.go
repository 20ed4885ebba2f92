// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package http

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-platform/internal/api/http/middleware"
	"agri-platform/pkg/config"
	"agri-platform/pkg/metrics"
)

func TestRouter_CORSPreflight(t *testing.T) {
	s := buildServer(&fakeDiagnoser{}, nil)
	w := ut.PerformRequest(s.Engine, "OPTIONS", "/api/disease-detection", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "http://localhost:3000"})
	resp := w.Result()
	assert.Equal(t, 204, resp.StatusCode())
	assert.Equal(t, "*", string(resp.Header.Peek("Access-Control-Allow-Origin")))
}

func TestRouter_CORSAllowList(t *testing.T) {
	mw := middleware.NewMiddleware(config.CORSConfig{Enable: true, AllowOrigins: []string{"https://farm.example"}})
	s := NewRouter(NewHandler(&fakeDiagnoser{}, nil), mw).Build(":0")

	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://farm.example"})
	assert.Equal(t, "https://farm.example", string(w.Result().Header.Peek("Access-Control-Allow-Origin")))

	w = ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://evil.example"})
	assert.Empty(t, string(w.Result().Header.Peek("Access-Control-Allow-Origin")))
}

func TestRouter_RequestIDPropagated(t *testing.T) {
	s := buildServer(&fakeDiagnoser{}, nil)
	w := ut.PerformRequest(s.Engine, "GET", "/api/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: middleware.HeaderRequestID, Value: "req-123"})
	assert.Equal(t, "req-123", string(w.Result().Header.Peek(middleware.HeaderRequestID)))
}

func TestRouter_Metrics(t *testing.T) {
	metrics.UploadBytes.Observe(1024)
	s := buildServer(&fakeDiagnoser{}, nil)
	w := ut.PerformRequest(s.Engine, "GET", "/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())
	assert.True(t, strings.Contains(string(resp.Body()), "agri_upload_bytes"), string(resp.Body()))
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := buildServer(&fakeDiagnoser{}, nil)
	w := ut.PerformRequest(s.Engine, "GET", "/api/documents", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestRouter_MetricsDisabled(t *testing.T) {
	r := NewRouter(NewHandler(&fakeDiagnoser{}, nil), middleware.NewMiddleware(config.CORSConfig{}))
	r.SetMetricsEnabled(false)
	s := r.Build(":0")
	w := ut.PerformRequest(s.Engine, "GET", "/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	assert.Equal(t, 404, w.Result().StatusCode())
}
