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


package diagnosis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedReply 模型回复去掉围栏后仍不是 JSON 对象
var ErrMalformedReply = errors.New("malformed model reply")

const (
	fence              = "```"
	unknownPlant       = "Unknown"
	noDisease          = "None"
	unnamedDisease     = "Unknown"
	maxStripIterations = 8
)

// StripFences 去掉首尾的 ``` 围栏（首部可带 json 等格式标注），直到不再有外层围栏；纯文本处理，幂等
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	for i := 0; i < maxStripIterations; i++ {
		next := stripFenceOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func stripFenceOnce(s string) string {
	if strings.HasPrefix(s, fence) {
		s = dropFormatHint(s[len(fence):])
	}
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}
	return strings.TrimSpace(s)
}

// dropFormatHint 去掉紧跟在开头围栏后的格式标注（json、JSON、jsonc 等）
func dropFormatHint(s string) string {
	i := 0
	for i < len(s) && isHintByte(s[i]) {
		i++
	}
	if i == 0 {
		return s
	}
	if i == len(s) {
		return ""
	}
	switch s[i] {
	case '\n', '\r', ' ', '\t', '{', '[':
		return s[i:]
	}
	return s
}

func isHintByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '+'
}

// replyText 宽松文本字段：接受字符串、null、字符串数组（按行拼接）与标量
type replyText struct {
	value string
}

func (t *replyText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		t.value = ""
	case data[0] == '"':
		return json.Unmarshal(data, &t.value)
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			var inner replyText
			if err := inner.UnmarshalJSON(item); err != nil {
				return err
			}
			if inner.value != "" {
				lines = append(lines, inner.value)
			}
		}
		t.value = strings.Join(lines, "\n")
	case data[0] == '{':
		return errors.New("expected text, got object")
	default:
		t.value = string(data)
	}
	return nil
}

func (t *replyText) String() string {
	if t == nil {
		return ""
	}
	return t.value
}

// healthFlag 接受布尔值或 "true"/"false"/"yes"/"no"/"healthy"/"diseased"；null 视为缺省
type healthFlag struct {
	set     bool
	healthy bool
}

func (h *healthFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = healthFlag{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*h = healthFlag{set: true, healthy: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("is_healthy: unsupported value %s", string(data))
	}
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		*h = healthFlag{}
	case "yes", "healthy":
		*h = healthFlag{set: true, healthy: true}
	case "no", "diseased", "unhealthy":
		*h = healthFlag{set: true, healthy: false}
	default:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("is_healthy: unsupported value %q", s)
		}
		*h = healthFlag{set: true, healthy: parsed}
	}
	return nil
}

type modelReply struct {
	PlantType      *replyText  `json:"plant_type"`
	IsHealthy      *healthFlag `json:"is_healthy"`
	DiseaseName    *replyText  `json:"disease_name"`
	Description    *replyText  `json:"description"`
	Recommendation *replyText  `json:"recommendation"`
}

// ParseReply 去围栏后严格解析为 JSON 对象，再按缺省规则映射为 Diagnosis
func ParseReply(raw string) (Diagnosis, error) {
	text := StripFences(raw)
	if text == "" {
		return Diagnosis{}, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}
	if text[0] != '{' {
		return Diagnosis{}, fmt.Errorf("%w: reply is not a JSON object", ErrMalformedReply)
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return Diagnosis{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	healthy := true
	if reply.IsHealthy != nil && reply.IsHealthy.set {
		healthy = reply.IsHealthy.healthy
	}

	plant := reply.PlantType.String()
	if strings.TrimSpace(plant) == "" {
		plant = unknownPlant
	}

	diseaseName := noDisease
	if !healthy {
		diseaseName = reply.DiseaseName.String()
		if strings.TrimSpace(diseaseName) == "" {
			diseaseName = unnamedDisease
		}
	}

	return Diagnosis{
		PlantType:       plant,
		DiseaseDetected: !healthy,
		DiseaseName:     diseaseName,
		Description:     reply.Description.String(),
		Recommendation:  reply.Recommendation.String(),
		IsMock:          false,
	}, nil
}
