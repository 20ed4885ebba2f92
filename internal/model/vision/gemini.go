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
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// StatusError 模型服务返回非 200 状态
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary 429 与 5xx 视为可重试
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// GeminiClient Google Gemini generateContent 客户端（inline_data 传图）
type GeminiClient struct {
	provider    string
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	maxTokens   int
	client      *resty.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inline_data,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewGeminiClient 创建 Gemini 客户端；BaseURL 为空时读取 GEMINI_BASE_URL，再退回官方地址
func NewGeminiClient(opts ProviderOptions) (*GeminiClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api_key is required")
	}
	model := opts.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
		if envURL := os.Getenv("GEMINI_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	client := resty.New()
	client.SetTimeout(opts.timeout())
	client.SetRetryCount(retries)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if r == nil {
			return false
		}
		code := r.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	})

	return &GeminiClient{
		provider:    "gemini",
		model:       model,
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client:      client,
	}, nil
}

// Analyze 提交提示词与图像
func (c *GeminiClient) Analyze(ctx context.Context, req Request) (string, error) {
	if len(req.Image) == 0 {
		return "", fmt.Errorf("gemini: empty image")
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: req.Prompt},
				{InlineData: &geminiBlob{
					MimeType: mimeTypeOf(req),
					Data:     base64.StdEncoding.EncodeToString(req.Image),
				}},
			},
		}},
	}
	if c.temperature > 0 || c.maxTokens > 0 {
		gc := &geminiGenerationConfig{MaxOutputTokens: c.maxTokens}
		if c.temperature > 0 {
			t := c.temperature
			gc.Temperature = &t
		}
		body.GenerationConfig = gc
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(body).
		Post(c.baseURL + "/models/" + c.model + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if response.StatusCode() != http.StatusOK {
		return "", &StatusError{
			Provider:   c.provider,
			StatusCode: response.StatusCode(),
			Message:    geminiErrorMessage(response.Body()),
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the request: %s", result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		reason := result.Candidates[0].FinishReason
		if reason == "" {
			reason = "empty response"
		}
		return "", fmt.Errorf("gemini returned no text (%s)", reason)
	}
	return sb.String(), nil
}

func geminiErrorMessage(body []byte) string {
	var eb geminiErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorBodySize)
}

func (c *GeminiClient) Name() string {
	return c.model
}

func (c *GeminiClient) Provider() string {
	return c.provider
}
