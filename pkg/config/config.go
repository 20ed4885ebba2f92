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


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIConfigPath API 进程默认配置文件
const DefaultAPIConfigPath = "configs/api.yaml"

// Config 应用配置结构体
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Model      ModelConfig      `mapstructure:"model"`
	Diagnosis  DiagnosisConfig  `mapstructure:"diagnosis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port           int        `mapstructure:"port"`
	Host           string     `mapstructure:"host"`
	MaxUploadBytes int64      `mapstructure:"max_upload_bytes"` // multipart 请求体上限
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// ModelConfig 模型配置
type ModelConfig struct {
	Vision VisionConfig `mapstructure:"vision"`
}

// VisionConfig Vision 模型配置，Default 为 Providers 中的 key
type VisionConfig struct {
	Default   string                    `mapstructure:"default"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 模型提供商配置；APIKey 为空时诊断进入 mock 模式
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`     // 单次 HTTP 调用超时，如 "30s"
	MaxRetries  int     `mapstructure:"max_retries"` // 仅对网络错误 / 429 / 5xx 重试
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// DiagnosisConfig 诊断管线配置
type DiagnosisConfig struct {
	Timeout       string `mapstructure:"timeout"`         // 整个 live 调用的上限
	MaxImageBytes int64  `mapstructure:"max_image_bytes"` // 超出即返回失败结果
}

type StorageConfig struct {
	History HistoryConfig `mapstructure:"history"`
}

// HistoryConfig 诊断历史存储
type HistoryConfig struct {
	Type string `mapstructure:"type"` // memory | postgres
	DSN  string `mapstructure:"dsn"`  // type=postgres 时必填
}

// RateLimitsConfig 限流配置
type RateLimitsConfig struct {
	Vision VisionRateLimitConfig `mapstructure:"vision"`
}

type VisionRateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.max_upload_bytes", 16<<20)
	v.SetDefault("api.cors.enable", true)
	v.SetDefault("model.vision.default", "gemini")
	v.SetDefault("model.vision.providers.gemini.model", "gemini-1.5-flash")
	v.SetDefault("model.vision.providers.gemini.timeout", "30s")
	v.SetDefault("model.vision.providers.gemini.max_retries", 2)
	v.SetDefault("diagnosis.timeout", "45s")
	v.SetDefault("diagnosis.max_image_bytes", 10<<20)
	v.SetDefault("storage.history.type", "memory")
	v.SetDefault("rate_limits.vision.requests_per_minute", 60)
	v.SetDefault("rate_limits.vision.max_concurrent", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("monitoring.prometheus.enable", true)
	v.SetDefault("monitoring.tracing.service_name", "agri-diagnosis")
}

// LoadConfig 读取 configPath（为空时仅使用默认值与环境变量）；当前目录存在 .env 时先加载
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("无法加载 .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(&config)
	return &config, nil
}

// LoadAPIConfig 读取 CONFIG_PATH 或 configs/api.yaml；文件不存在时回退到默认值
func LoadAPIConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultAPIConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("[config] 未找到配置文件 %q，使用默认配置", path)
		return LoadConfig("")
	}
	return LoadConfig(path)
}

// replaceEnvVars 解析 ${VAR} 形式的 API Key，并以 <PROVIDER>_API_KEY 作为空值兜底
func replaceEnvVars(config *Config) {
	for provider, pc := range config.Model.Vision.Providers {
		key := strings.TrimSpace(pc.APIKey)
		if strings.HasPrefix(key, "$") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(key, "}"), "${")
			envVar = strings.TrimPrefix(envVar, "$")
			key = os.Getenv(envVar)
		}
		if key == "" {
			key = os.Getenv(strings.ToUpper(provider) + "_API_KEY")
		}
		pc.APIKey = strings.TrimSpace(key)
		config.Model.Vision.Providers[provider] = pc
	}
}

// VisionProvider 返回默认 Vision provider 名称及其配置；未配置时返回零值
func (c *Config) VisionProvider() (string, ProviderConfig) {
	name := c.Model.Vision.Default
	if name == "" {
		name = "gemini"
	}
	return name, c.Model.Vision.Providers[name]
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string {
	port := c.API.Port
	if port <= 0 {
		port = 8000
	}
	return fmt.Sprintf("%s:%d", c.API.Host, port)
}

// ParseDuration 解析时长字符串，无效或空时返回 defaultVal
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
