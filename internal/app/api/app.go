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


package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"agri-platform/internal/api/http"
	"agri-platform/internal/api/http/middleware"
	"agri-platform/internal/app"
	"agri-platform/pkg/log"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 HTTP Router、Handler、Middleware）
type App struct {
	config       *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	otelProvider otelProviderShutdown
	logFile      *os.File
}

// NewApp 创建 API 应用（由 cmd/api 调用）
func NewApp(bootstrap *app.Bootstrap) (*App, error) {
	if bootstrap == nil || bootstrap.Pipeline == nil {
		return nil, fmt.Errorf("bootstrap 未初始化诊断管线")
	}
	handler := http.NewHandler(bootstrap.Pipeline, bootstrap.History)
	mw := middleware.NewMiddleware(bootstrap.Config.API.CORS)
	router := http.NewRouter(handler, mw)
	if n := bootstrap.Config.API.MaxUploadBytes; n > 0 {
		router.SetMaxRequestBodySize(int(n))
	}
	router.SetMetricsEnabled(bootstrap.Config.Monitoring.Prometheus.Enable)
	return &App{config: bootstrap, router: router}, nil
}

// Run 启动 HTTP 服务，addr 如 ":8000"
func (a *App) Run(addr string) error {
	a.config.Logger.Info("API 服务启动", "addr", addr, "mock_mode", a.config.MockMode)

	// 使用 Hertz slog 扩展，与 bootstrap 配置对齐
	output := os.Stdout
	if a.config.Config.Log.File != "" {
		f, err := os.OpenFile(a.config.Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		output = f
		a.logFile = f
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(log.ParseLevel(a.config.Config.Log.Level))
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))

	// 可选：启用链路追踪（OpenTelemetry）
	tracingCfg := a.config.Config.Monitoring.Tracing
	exportEndpoint := tracingCfg.ExportEndpoint
	if exportEndpoint == "" {
		exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if tracingCfg.Enable && exportEndpoint != "" {
		serviceName := tracingCfg.ServiceName
		if serviceName == "" {
			serviceName = "agri-api"
		}
		opts := []provider.Option{
			provider.WithServiceName(serviceName),
			provider.WithExportEndpoint(exportEndpoint),
		}
		if tracingCfg.Insecure {
			opts = append(opts, provider.WithInsecure())
		}
		a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
		tracerOpt, cfg := hertztracing.NewServerTracer()
		a.router.Use(hertztracing.ServerMiddleware(cfg))
		a.hertz = a.router.Build(addr, tracerOpt)
		a.config.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
	} else {
		a.hertz = a.router.Build(addr)
	}
	return a.hertz.Run()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	if err := a.config.Close(); err != nil {
		a.config.Logger.Warn("关闭诊断历史存储失败", "error", err)
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	return nil
}
