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
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIClient OpenAI 兼容的多模态 Chat 接口（经 eino ChatModel），图像以 data URI 传入
type OpenAIClient struct {
	provider string
	model    string
	chat     model.BaseChatModel
}

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(ctx context.Context, opts ProviderOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("openai api_key is required")
	}
	name := opts.Model
	if name == "" {
		name = "gpt-4o-mini"
	}
	cfg := &openai.ChatModelConfig{
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
		Model:   name,
		Timeout: opts.timeout(),
	}
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		cfg.Temperature = &t
	}
	if opts.MaxTokens > 0 {
		n := opts.MaxTokens
		cfg.MaxTokens = &n
	}
	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}
	return newOpenAIClientWithModel(name, chatModel), nil
}

func newOpenAIClientWithModel(name string, chat model.BaseChatModel) *OpenAIClient {
	return &OpenAIClient{provider: "openai", model: name, chat: chat}
}

// Analyze 提交提示词与图像
func (c *OpenAIClient) Analyze(ctx context.Context, req Request) (string, error) {
	if len(req.Image) == 0 {
		return "", fmt.Errorf("openai: empty image")
	}
	dataURI := "data:" + mimeTypeOf(req) + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: dataURI}},
		},
	}
	out, err := c.chat.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("openai returned no text")
	}
	return out.Content, nil
}

func (c *OpenAIClient) Name() string {
	return c.model
}

func (c *OpenAIClient) Provider() string {
	return c.provider
}
