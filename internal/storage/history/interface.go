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


// Package history 保存成功诊断的记录，供农户查看近期诊断；管线本身不依赖此包
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 50
)

// Store 诊断历史存储接口
type Store interface {
	// Save 保存一条诊断记录；ID、CreatedAt 为空时自动填充
	Save(ctx context.Context, rec *Record) error
	// ListByFarmer 按时间倒序列出农户最近的记录
	ListByFarmer(ctx context.Context, farmerID string, limit int) ([]*Record, error)
	// Close 关闭存储连接
	Close() error
}

// Record 一条成功诊断
type Record struct {
	ID              uuid.UUID `json:"id"`
	FarmerID        string    `json:"farmer_id"`
	PlantType       string    `json:"plant_type"`
	DiseaseDetected bool      `json:"disease_detected"`
	DiseaseName     string    `json:"disease_name"`
	Description     string    `json:"description"`
	Recommendation  string    `json:"recommendation"`
	IsMock          bool      `json:"is_mock"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClampLimit 把 limit 规整到 [1, MaxListLimit]，非正数取 DefaultListLimit
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func (r *Record) fill() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}
