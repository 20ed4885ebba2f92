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


package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"agri-platform/pkg/config"
)

const (
	// HeaderRequestID 请求 ID 头，客户端带上时沿用
	HeaderRequestID = "X-Request-ID"
	// KeyRequestID RequestContext 中保存请求 ID 的 key
	KeyRequestID = "request_id"
)

// Middleware 中间件管理器
type Middleware struct {
	cors config.CORSConfig
}

// NewMiddleware 创建中间件管理器
func NewMiddleware(cors config.CORSConfig) *Middleware {
	return &Middleware{cors: cors}
}

// CORS 浏览器端上传图片需要跨域；OPTIONS 预检直接 204
func (m *Middleware) CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !m.cors.Enable {
			c.Next(ctx)
			return
		}
		if origin := m.allowOrigin(string(c.GetHeader("Origin"))); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept, "+HeaderRequestID)
			c.Header("Access-Control-Expose-Headers", HeaderRequestID)
			c.Header("Access-Control-Max-Age", "86400")
		}
		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}

func (m *Middleware) allowOrigin(origin string) string {
	if len(m.cors.AllowOrigins) == 0 {
		return "*"
	}
	for _, o := range m.cors.AllowOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// RequestID 为每个请求分配 ID 并回写响应头
func (m *Middleware) RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := strings.TrimSpace(string(c.GetHeader(HeaderRequestID)))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(KeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next(ctx)
	}
}

// AccessLog 请求日志，经 hlog 输出
func (m *Middleware) AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		hlog.CtxInfof(ctx, "%s %s | %d | %s | request_id=%s",
			c.Method(), c.Path(), c.Response.StatusCode(), time.Since(start), RequestIDFrom(c))
	}
}

// RequestIDFrom 取出 RequestID 中间件写入的 ID
func RequestIDFrom(c *app.RequestContext) string {
	return c.GetString(KeyRequestID)
}
