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

	"agri-platform/internal/diagnosis"
	"agri-platform/internal/storage/history"
	"agri-platform/pkg/config"
	"agri-platform/pkg/log"
)

// Bootstrap 统一初始化：供 api 与 diagnose CLI 复用，避免在 cmd 内写业务
type Bootstrap struct {
	Config   *config.Config
	Logger   *log.Logger
	Pipeline *diagnosis.Pipeline
	History  history.Store
	MockMode bool
	Provider string
}

// NewBootstrap 根据配置创建 Bootstrap（Logger/Vision/Pipeline/History）
func NewBootstrap(ctx context.Context, cfg *config.Config) (*Bootstrap, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.LoadConfig(""); err != nil {
			return nil, err
		}
	}
	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	pipeline, provider, err := NewPipelineFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pipeline.Mock() {
		logger.Warn("未配置 Vision 模型 API Key，诊断将返回 mock 结果", "provider", provider)
	} else {
		logger.Info("Vision 模型已配置", "provider", provider)
	}

	store, err := history.NewStore(ctx, cfg.Storage.History)
	if err != nil {
		return nil, fmt.Errorf("初始化诊断历史存储失败: %w", err)
	}

	return &Bootstrap{
		Config:   cfg,
		Logger:   logger,
		Pipeline: pipeline,
		History:  store,
		MockMode: pipeline.Mock(),
		Provider: provider,
	}, nil
}

// Close 释放存储连接
func (b *Bootstrap) Close() error {
	if b.History != nil {
		return b.History.Close()
	}
	return nil
}

// NewPipelineFromConfig 根据 model.vision 与 diagnosis 配置创建诊断管线，返回所用 provider
func NewPipelineFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*diagnosis.Pipeline, string, error) {
	provider, pc := cfg.VisionProvider()
	client, err := NewVisionClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, provider, err
	}
	pipeline := diagnosis.NewPipeline(diagnosis.Config{
		APIKey:        pc.APIKey,
		Timeout:       config.ParseDuration(cfg.Diagnosis.Timeout, diagnosis.DefaultTimeout),
		MaxImageBytes: cfg.Diagnosis.MaxImageBytes,
	}, client, logger)
	return pipeline, provider, nil
}
