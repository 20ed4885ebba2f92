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
	"sort"
	"strings"
	"sync"
)

// Factory 根据提供商参数创建 Client
type Factory func(ctx context.Context, opts ProviderOptions) (Client, error)

var (
	factories  = map[string]Factory{}
	factoryMu  sync.RWMutex
	registered sync.Once
)

func registerBuiltins() {
	registered.Do(func() {
		factoryMu.Lock()
		defer factoryMu.Unlock()
		factories["gemini"] = func(_ context.Context, opts ProviderOptions) (Client, error) {
			return NewGeminiClient(opts)
		}
		factories["openai"] = func(ctx context.Context, opts ProviderOptions) (Client, error) {
			return NewOpenAIClient(ctx, opts)
		}
	})
}

// RegisterProvider 注册（或覆盖）提供商工厂
func RegisterProvider(name string, f Factory) {
	registerBuiltins()
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[strings.ToLower(name)] = f
}

// Providers 返回已注册的提供商名称（排序后）
func Providers() []string {
	registerBuiltins()
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClient 按提供商名称创建 Client；APIKey 为空时返回 (nil, nil)，由调用方决定降级
func NewClient(ctx context.Context, provider string, opts ProviderOptions) (Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, nil
	}
	registerBuiltins()
	factoryMu.RLock()
	f, ok := factories[strings.ToLower(provider)]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("vision provider not registered: %s", provider)
	}
	return f(ctx, opts)
}
