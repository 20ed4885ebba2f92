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
	"sort"
	"sync"

	pkgerrors "agri-platform/pkg/errors"
)

// MemoryStore 进程内历史存储，按农户分桶
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]*Record
}

// NewMemoryStore 创建内存历史存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]*Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.FarmerID == "" {
		return pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "history record requires farmer_id")
	}
	rec.fill()
	cp := *rec

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[cp.FarmerID] {
		if existing.ID == cp.ID {
			return fmt.Errorf("history record %s already exists", cp.ID)
		}
	}
	s.records[cp.FarmerID] = append(s.records[cp.FarmerID], &cp)
	return nil
}

func (s *MemoryStore) ListByFarmer(ctx context.Context, farmerID string, limit int) ([]*Record, error) {
	limit = ClampLimit(limit)

	s.mu.RLock()
	src := s.records[farmerID]
	out := make([]*Record, 0, len(src))
	for _, rec := range src {
		cp := *rec
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
