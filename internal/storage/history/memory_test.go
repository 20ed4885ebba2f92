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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"agri-platform/pkg/config"
	pkgerrors "agri-platform/pkg/errors"
)

func TestMemoryStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := &Record{FarmerID: "f1", PlantType: fmt.Sprintf("plant-%d", i), CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if rec.ID == uuid.Nil {
			t.Fatal("Save should assign an ID")
		}
	}
	_ = s.Save(ctx, &Record{FarmerID: "f2", PlantType: "other"})

	got, err := s.ListByFarmer(ctx, "f1", 0)
	if err != nil {
		t.Fatalf("ListByFarmer: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByFarmer: got %d records", len(got))
	}
	if got[0].PlantType != "plant-2" || got[2].PlantType != "plant-0" {
		t.Errorf("ListByFarmer should be newest first: %s, %s", got[0].PlantType, got[2].PlantType)
	}

	got, _ = s.ListByFarmer(ctx, "f1", 2)
	if len(got) != 2 {
		t.Errorf("limit 2: got %d", len(got))
	}
	got, _ = s.ListByFarmer(ctx, "nobody", 5)
	if len(got) != 0 {
		t.Errorf("unknown farmer: got %d", len(got))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := &Record{FarmerID: "f1", PlantType: "Tomato"}
	_ = s.Save(ctx, rec)
	rec.PlantType = "changed"

	got, _ := s.ListByFarmer(ctx, "f1", 1)
	got[0].PlantType = "mutated"
	again, _ := s.ListByFarmer(ctx, "f1", 1)
	if again[0].PlantType != "Tomato" {
		t.Errorf("stored record was mutated: %q", again[0].PlantType)
	}
}

func TestMemoryStore_SaveValidation(t *testing.T) {
	s := NewMemoryStore()
	err := s.Save(context.Background(), &Record{PlantType: "x"})
	if !errors.Is(err, pkgerrors.ErrInvalidArg) {
		t.Errorf("missing farmer_id: got %v", err)
	}
	rec := &Record{FarmerID: "f1"}
	_ = s.Save(context.Background(), rec)
	if err := s.Save(context.Background(), &Record{ID: rec.ID, FarmerID: "f1"}); err == nil {
		t.Error("duplicate ID should error")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Save(ctx, &Record{FarmerID: "f1"})
			_, _ = s.ListByFarmer(ctx, "f1", MaxListLimit)
		}()
	}
	wg.Wait()
	got, _ := s.ListByFarmer(ctx, "f1", MaxListLimit)
	if len(got) != 40 {
		t.Errorf("got %d records, want 40", len(got))
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-1: DefaultListLimit, 0: DefaultListLimit, 1: 1, 50: 50, 51: MaxListLimit, 1000: MaxListLimit}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, config.HistoryConfig{})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("default store should be memory, got %T", s)
	}
	if _, err := NewStore(ctx, config.HistoryConfig{Type: "postgres"}); err == nil {
		t.Error("postgres without DSN should error")
	}
	if _, err := NewStore(ctx, config.HistoryConfig{Type: "mongo"}); err == nil {
		t.Error("unknown type should error")
	}
}
