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


// Package diagnosis 植物病害诊断管线：图像 → 外部多模态模型 → 结构化结果
package diagnosis

import (
	"encoding/json"
	"errors"

	pkgerrors "agri-platform/pkg/errors"
)

// Diagnosis 成功诊断的字段集
type Diagnosis struct {
	PlantType       string `json:"plant_type"`
	DiseaseDetected bool   `json:"disease_detected"`
	DiseaseName     string `json:"disease_name"`
	Description     string `json:"description"`
	Recommendation  string `json:"recommendation"`
	IsMock          bool   `json:"is_mock"`
}

// Result 诊断结果：Diagnosis 与 Err 有且仅有一个被填充
type Result struct {
	Diagnosis *Diagnosis
	Err       string
}

const unknownError = "unknown diagnosis error"

// Succeeded 构造成功结果
func Succeeded(d Diagnosis) Result {
	return Result{Diagnosis: &d}
}

// Failed 构造失败结果，错误文本保证非空
func Failed(err error) Result {
	return Result{Err: pkgerrors.Message(err, unknownError)}
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Diagnosis != nil
}

type successPayload struct {
	Success bool `json:"success"`
	*Diagnosis
}

type failurePayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON 成功时输出 success + 全部诊断字段；失败时仅输出 success=false 与 error
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Diagnosis != nil {
		return json.Marshal(successPayload{Success: true, Diagnosis: r.Diagnosis})
	}
	msg := r.Err
	if msg == "" {
		msg = unknownError
	}
	return json.Marshal(failurePayload{Success: false, Error: msg})
}

// UnmarshalJSON 解析 MarshalJSON 的输出
func (r *Result) UnmarshalJSON(data []byte) error {
	var probe struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Success == nil {
		return errors.New("diagnosis result: missing success flag")
	}
	if !*probe.Success {
		*r = Failed(errors.New(probe.Error))
		return nil
	}
	var d Diagnosis
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*r = Succeeded(d)
	return nil
}
