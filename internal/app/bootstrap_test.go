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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-platform/internal/model/vision"
	"agri-platform/internal/storage/history"
	"agri-platform/pkg/config"
)

func testConfig(provider string, pc config.ProviderConfig) *config.Config {
	return &config.Config{
		Model: config.ModelConfig{Vision: config.VisionConfig{
			Default:   provider,
			Providers: map[string]config.ProviderConfig{provider: pc},
		}},
		Diagnosis: config.DiagnosisConfig{Timeout: "5s"},
		Log:       config.LogConfig{Level: "error"},
	}
}

func TestNewBootstrap_MockWithoutKey(t *testing.T) {
	b, err := NewBootstrap(context.Background(), testConfig("gemini", config.ProviderConfig{Model: "gemini-1.5-flash"}))
	require.NoError(t, err)
	defer b.Close()

	assert.True(t, b.MockMode)
	assert.True(t, b.Pipeline.Mock())
	assert.Equal(t, "gemini", b.Provider)
	_, ok := b.History.(*history.MemoryStore)
	assert.True(t, ok)
}

func TestNewBootstrap_LiveWithKey(t *testing.T) {
	b, err := NewBootstrap(context.Background(), testConfig("gemini", config.ProviderConfig{
		APIKey:  "test-key",
		BaseURL: "http://127.0.0.1:1",
		Model:   "gemini-1.5-flash",
	}))
	require.NoError(t, err)
	defer b.Close()
	assert.False(t, b.MockMode)
}

func TestNewBootstrap_BadHistoryType(t *testing.T) {
	cfg := testConfig("gemini", config.ProviderConfig{})
	cfg.Storage.History.Type = "sqlite"
	_, err := NewBootstrap(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewVisionClientFromConfig(t *testing.T) {
	ctx := context.Background()

	c, err := NewVisionClientFromConfig(ctx, testConfig("gemini", config.ProviderConfig{}))
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewVisionClientFromConfig(ctx, testConfig("llava", config.ProviderConfig{APIKey: "k"}))
	assert.Error(t, err)

	cfg := testConfig("gemini", config.ProviderConfig{APIKey: "k", Model: "gemini-1.5-pro"})
	cfg.RateLimits.Vision = config.VisionRateLimitConfig{RequestsPerMinute: 60, MaxConcurrent: 2}
	c, err = NewVisionClientFromConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	_, limited := c.(*vision.RateLimitedClient)
	assert.True(t, limited)
	assert.Equal(t, "gemini", c.Provider())
	assert.Equal(t, "gemini-1.5-pro", c.Name())

	cfg.RateLimits.Vision = config.VisionRateLimitConfig{}
	c, err = NewVisionClientFromConfig(ctx, cfg)
	require.NoError(t, err)
	_, plain := c.(*vision.GeminiClient)
	assert.True(t, plain)
}
