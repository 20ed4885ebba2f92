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


package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 与 CLI 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		DiagnosisTotal, DiagnosisDuration,
		VisionRequestDuration, RateLimitWaitSeconds,
		UploadBytes,
	)
}

// DiagnosisTotal 诊断次数（按模式与结果）
var DiagnosisTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agri_diagnosis_total",
		Help: "诊断次数（按模式与结果）",
	},
	[]string{"mode", "outcome"}, // mode: mock | live; outcome: success | invalid_image | transport_error | malformed_reply | internal_error
)

// DiagnosisDuration 诊断端到端耗时（秒）
var DiagnosisDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agri_diagnosis_duration_seconds",
		Help:    "诊断端到端耗时（秒）",
		Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 20, 45, 90},
	},
	[]string{"mode"},
)

// VisionRequestDuration 单次 Vision 模型 HTTP 调用耗时
var VisionRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agri_vision_request_duration_seconds",
		Help:    "Vision 模型调用耗时（秒）",
		Buckets: []float64{0.25, 1, 2.5, 5, 10, 20, 45},
	},
	[]string{"provider", "status"}, // status: ok | error
)

var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agri_rate_limit_wait_seconds",
		Help:    "限流等待耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"component", "provider"},
)

// UploadBytes 上传图片大小分布
var UploadBytes = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "agri_upload_bytes",
		Help:    "上传图片大小（字节）",
		Buckets: prometheus.ExponentialBuckets(16<<10, 4, 6),
	},
)

func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
