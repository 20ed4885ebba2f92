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
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"agri-platform/internal/api/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	handler     *Handler
	middleware  *middleware.Middleware
	maxBodySize int
	noMetrics   bool
	extra       []app.HandlerFunc
}

// NewRouter 创建 HTTP 路由器
func NewRouter(handler *Handler, mw *middleware.Middleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// SetMaxRequestBodySize 限制请求体大小（上传图片）；<=0 使用 hertz 默认值
func (r *Router) SetMaxRequestBodySize(n int) {
	r.maxBodySize = n
}

// SetMetricsEnabled 是否注册 GET /metrics（默认注册）
func (r *Router) SetMetricsEnabled(enabled bool) {
	r.noMetrics = !enabled
}

// Use 追加全局中间件，需在 Build 之前调用（如链路追踪）
func (r *Router) Use(mw ...app.HandlerFunc) {
	r.extra = append(r.extra, mw...)
}

// Build 创建 Hertz 实例并注册路由，opts 追加在默认选项之后（如链路追踪）
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	serverOpts := []config.Option{server.WithHostPorts(addr)}
	if r.maxBodySize > 0 {
		serverOpts = append(serverOpts, server.WithMaxRequestBodySize(r.maxBodySize))
	}
	h := server.New(append(serverOpts, opts...)...)
	r.register(h)
	return h
}

func (r *Router) register(h *server.Hertz) {
	h.Use(recovery.Recovery())
	h.Use(r.extra...)
	h.Use(r.middleware.RequestID(), r.middleware.AccessLog(), r.middleware.CORS())

	if !r.noMetrics {
		h.GET("/metrics", r.handler.Metrics)
	}

	api := h.Group("/api")
	api.GET("/health", r.handler.HealthCheck)
	api.POST("/disease-detection", r.handler.DetectDisease)
	api.GET("/diagnoses", r.handler.ListDiagnoses)
	// 预检请求由 CORS 中间件直接应答
	api.OPTIONS("/*path", func(ctx context.Context, c *app.RequestContext) {
		c.Status(consts.StatusNoContent)
	})
}
