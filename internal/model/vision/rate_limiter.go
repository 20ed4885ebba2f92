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


package vision

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"agri-platform/pkg/metrics"
)

// LimitConfig Vision 调用限流配置
type LimitConfig struct {
	RequestsPerMinute float64 // 每分钟请求数，<=0 不限
	MaxConcurrent     int     // 最大并发请求数，<=0 不限
}

// RateLimiter 请求速率 + 并发控制
type RateLimiter struct {
	requestLimiter *rate.Limiter
	semaphore      chan struct{}
}

// NewRateLimiter 创建限流器；两项均未配置时返回 nil
func NewRateLimiter(cfg LimitConfig) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 && cfg.MaxConcurrent <= 0 {
		return nil
	}
	l := &RateLimiter{}
	if cfg.RequestsPerMinute > 0 {
		rps := cfg.RequestsPerMinute / 60.0
		burst := int(rps * 2) // burst = 2 秒的配额
		if burst < 1 {
			burst = 1
		}
		l.requestLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if cfg.MaxConcurrent > 0 {
		l.semaphore = make(chan struct{}, cfg.MaxConcurrent)
	}
	return l
}

// Wait 阻塞直到获得执行许可；成功后必须调用 Release
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l.requestLimiter != nil {
		if err := l.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("vision rate limit wait failed: %w", err)
		}
	}
	if l.semaphore != nil {
		select {
		case l.semaphore <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("vision concurrency wait failed: %w", ctx.Err())
		}
	}
	return nil
}

// Release 释放并发 slot
func (l *RateLimiter) Release() {
	if l.semaphore == nil {
		return
	}
	select {
	case <-l.semaphore:
	default:
	}
}

// InFlight 当前占用的并发 slot 数
func (l *RateLimiter) InFlight() int {
	if l.semaphore == nil {
		return 0
	}
	return len(l.semaphore)
}

// RateLimitedClient 带限流的 Client 装饰器
type RateLimitedClient struct {
	inner   Client
	limiter *RateLimiter
}

// NewRateLimitedClient limiter 为 nil 时直接透传
func NewRateLimitedClient(inner Client, limiter *RateLimiter) *RateLimitedClient {
	return &RateLimitedClient{inner: inner, limiter: limiter}
}

func (c *RateLimitedClient) Analyze(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		start := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		if waited := time.Since(start); waited > 100*time.Millisecond {
			metrics.RateLimitWaitSeconds.WithLabelValues("vision", c.inner.Provider()).Observe(waited.Seconds())
		}
		defer c.limiter.Release()
	}
	return c.inner.Analyze(ctx, req)
}

func (c *RateLimitedClient) Name() string { return c.inner.Name() }

func (c *RateLimitedClient) Provider() string { return c.inner.Provider() }
