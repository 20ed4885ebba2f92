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

	"github.com/jackc/pgx/v5/pgxpool"

	pkgerrors "agri-platform/pkg/errors"
)

const schema = `CREATE TABLE IF NOT EXISTS disease_diagnoses (
	id UUID PRIMARY KEY,
	farmer_id TEXT NOT NULL,
	plant_type TEXT NOT NULL,
	disease_detected BOOLEAN NOT NULL,
	disease_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	recommendation TEXT NOT NULL DEFAULT '',
	is_mock BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_disease_diagnoses_farmer_created ON disease_diagnoses (farmer_id, created_at DESC);`

// PostgresStore Postgres 实现的历史存储；表不存在时自动创建
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 连接数据库并确保 disease_diagnoses 表存在
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "解析 history DSN 失败")
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, pkgerrors.Wrap(err, "初始化 disease_diagnoses 表失败")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.FarmerID == "" {
		return pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "history record requires farmer_id")
	}
	rec.fill()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO disease_diagnoses (id, farmer_id, plant_type, disease_detected, disease_name, description, recommendation, is_mock, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.FarmerID, rec.PlantType, rec.DiseaseDetected, rec.DiseaseName,
		rec.Description, rec.Recommendation, rec.IsMock, rec.CreatedAt)
	return err
}

func (s *PostgresStore) ListByFarmer(ctx context.Context, farmerID string, limit int) ([]*Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, farmer_id, plant_type, disease_detected, disease_name, description, recommendation, is_mock, created_at
		 FROM disease_diagnoses WHERE farmer_id = $1 ORDER BY created_at DESC LIMIT $2`,
		farmerID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.FarmerID, &rec.PlantType, &rec.DiseaseDetected, &rec.DiseaseName,
			&rec.Description, &rec.Recommendation, &rec.IsMock, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Close 关闭连接池
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
