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


// Package vision 多模态（图像 + 文本）模型客户端
package vision

import (
	"context"
	"time"
)

// Request 一次图像分析请求
type Request struct {
	Prompt   string
	Image    []byte
	MIMEType string // 如 image/jpeg；为空时由实现自行探测
}

// Client 视觉模型接口：提交提示词与图像，返回模型原始文本回复
type Client interface {
	// Analyze 同步调用外部模型，可能阻塞数秒；实现需支持并发调用
	Analyze(ctx context.Context, req Request) (string, error)
	// Name 返回模型名称
	Name() string
	// Provider 返回提供商名称
	Provider() string
}

// ProviderOptions 创建客户端所需的提供商参数
type ProviderOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	MaxTokens   int
}

const (
	defaultTimeout   = 30 * time.Second
	defaultMIMEType  = "image/jpeg"
	maxErrorBodySize = 512
)

func (o ProviderOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

func mimeTypeOf(req Request) string {
	if req.MIMEType != "" {
		return req.MIMEType
	}
	return defaultMIMEType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
