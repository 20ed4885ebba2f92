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


package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

func apiBaseURL() string {
	if u := os.Getenv("AGRI_API_URL"); u != "" {
		return u
	}
	return "http://localhost:8000"
}

// 诊断接口同步等待模型回复，超时需大于服务端 diagnosis.timeout
func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL()).
		SetTimeout(90 * time.Second)
}

func getHealth() (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := newClient().R().
		SetResult(&out).
		Get("/api/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/health: %s", resp.String())
	}
	return out, nil
}

// detectDisease 上传图片；400 之外的业务失败同样以 200 + success=false 返回
func detectDisease(imagePath, farmerID string) (map[string]interface{}, error) {
	var out map[string]interface{}
	req := newClient().R().
		SetFile("image", imagePath).
		SetResult(&out).
		SetError(&out)
	if farmerID != "" {
		req.SetFormData(map[string]string{"farmer_id": farmerID})
	}
	resp, err := req.Post("/api/disease-detection")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusBadRequest {
		return nil, fmt.Errorf("POST /api/disease-detection: %s", resp.String())
	}
	return out, nil
}

func listDiagnoses(farmerID string, limit int) ([]map[string]interface{}, error) {
	var out struct {
		Diagnoses []map[string]interface{} `json:"diagnoses"`
	}
	req := newClient().R().
		SetQueryParam("farmer_id", farmerID).
		SetResult(&out)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/diagnoses")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /api/diagnoses: %s", resp.String())
	}
	return out.Diagnoses, nil
}
