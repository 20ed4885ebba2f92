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


package app

import (
	"context"
	"fmt"

	"agri-platform/internal/model/vision"
	"agri-platform/pkg/config"
)

// NewVisionClientFromConfig 根据 model.vision.default 创建带限流的 Vision Client；api_key 为空时返回 (nil, nil)
func NewVisionClientFromConfig(ctx context.Context, cfg *config.Config) (vision.Client, error) {
	if cfg == nil {
		return nil, nil
	}
	provider, pc := cfg.VisionProvider()
	client, err := vision.NewClient(ctx, provider, vision.ProviderOptions{
		APIKey:      pc.APIKey,
		BaseURL:     pc.BaseURL,
		Model:       pc.Model,
		Timeout:     config.ParseDuration(pc.Timeout, 0),
		MaxRetries:  pc.MaxRetries,
		Temperature: pc.Temperature,
		MaxTokens:   pc.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 Vision provider %q 失败: %w", provider, err)
	}
	if client == nil {
		return nil, nil
	}

	limiter := vision.NewRateLimiter(vision.LimitConfig{
		RequestsPerMinute: cfg.RateLimits.Vision.RequestsPerMinute,
		MaxConcurrent:     cfg.RateLimits.Vision.MaxConcurrent,
	})
	if limiter == nil {
		return client, nil
	}
	return vision.NewRateLimitedClient(client, limiter), nil
}
