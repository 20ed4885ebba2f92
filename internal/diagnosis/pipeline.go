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


package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"agri-platform/internal/model/vision"
	pkgerrors "agri-platform/pkg/errors"
	"agri-platform/pkg/log"
	"agri-platform/pkg/metrics"
	"agri-platform/pkg/tracing"
)

const (
	DefaultTimeout       = 45 * time.Second
	DefaultMaxImageBytes = 10 << 20

	modeMock = "mock"
	modeLive = "live"

	outcomeSuccess        = "success"
	outcomeInvalidImage   = "invalid_image"
	outcomeTransportError = "transport_error"
	outcomeMalformedReply = "malformed_reply"
	outcomeInternalError  = "internal_error"

	logReplyLimit = 300
)

// Config 管线配置；APIKey 为空即 mock 模式
type Config struct {
	APIKey        string
	Timeout       time.Duration
	MaxImageBytes int64
}

// Diagnoser 诊断入口，供 HTTP 层与 CLI 依赖
type Diagnoser interface {
	Diagnose(ctx context.Context, req Request) Result
	Mock() bool
}

// Pipeline 诊断管线；不持有跨请求状态，可并发调用
type Pipeline struct {
	client vision.Client
	cfg    Config
	logger *log.Logger
}

// NewPipeline 创建管线；mock 模式下 client 可为 nil 且永远不会被调用
func NewPipeline(cfg Config, client vision.Client, logger *log.Logger) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Pipeline{client: client, cfg: cfg, logger: logger.With("component", "diagnosis")}
}

// Mock 是否处于 mock 模式
func (p *Pipeline) Mock() bool {
	return strings.TrimSpace(p.cfg.APIKey) == ""
}

// Diagnose 执行一次诊断；预期内的失败全部体现在返回值中，不会 panic 或返回 error
func (p *Pipeline) Diagnose(ctx context.Context, req Request) Result {
	start := time.Now()
	mode := modeLive
	if p.Mock() {
		mode = modeMock
	}
	ctx, span := tracing.StartDiagnosisSpan(ctx, mode)

	var (
		res     Result
		outcome string
	)
	if mode == modeMock {
		res, outcome = MockResult(), outcomeSuccess
	} else {
		ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		res, outcome = p.diagnoseLive(ctx, req)
		cancel()
	}

	metrics.DiagnosisTotal.WithLabelValues(mode, outcome).Inc()
	metrics.DiagnosisDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("diagnosis.outcome", outcome))
	if !res.OK() {
		tracing.EndSpan(span, errors.New(res.Err))
	} else {
		span.End()
	}
	return res
}

func (p *Pipeline) diagnoseLive(ctx context.Context, req Request) (res Result, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("诊断过程出现未预期错误", "panic", fmt.Sprint(r))
			res = Failed(fmt.Errorf("unexpected error while processing diagnosis: %v", r))
			outcome = outcomeInternalError
		}
	}()

	img, err := req.load(p.cfg.MaxImageBytes)
	if err != nil {
		p.logger.Warn("图像校验失败", "error", err)
		return Failed(err), outcomeInvalidImage
	}

	raw, err := p.analyze(ctx, img)
	if err != nil {
		p.logger.Warn("Vision 模型调用失败", "error", err)
		return Failed(err), outcomeTransportError
	}

	d, err := ParseReply(raw)
	if err != nil {
		p.logger.Warn("模型回复无法解析", "error", err, "reply", truncate(raw, logReplyLimit))
		return Failed(err), outcomeMalformedReply
	}

	p.logger.Info("诊断完成", "plant_type", d.PlantType, "disease_detected", d.DiseaseDetected, "image_bytes", len(img.data))
	return Succeeded(d), outcomeSuccess
}

func (p *Pipeline) analyze(ctx context.Context, img image) (string, error) {
	if p.client == nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrUnavailable, "vision model is not configured")
	}

	provider, name := p.client.Provider(), p.client.Name()
	ctx, span := tracing.StartVisionSpan(ctx, provider, name, len(img.data))
	start := time.Now()

	raw, err := p.client.Analyze(ctx, vision.Request{
		Prompt:   Prompt,
		Image:    img.data,
		MIMEType: img.mimeType,
	})

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("vision model timed out after %s: %w", p.cfg.Timeout, err)
		}
	}
	metrics.VisionRequestDuration.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
	tracing.EndSpan(span, err)
	return raw, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
