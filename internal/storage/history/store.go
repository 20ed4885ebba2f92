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


package history

import (
	"context"
	"fmt"

	"agri-platform/pkg/config"
)

// NewStore 根据配置创建历史存储（memory | postgres）
func NewStore(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage.history.dsn 不能为空（type=postgres）")
		}
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("不支持的历史存储类型: %s", cfg.Type)
	}
}
