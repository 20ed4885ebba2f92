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


package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"agri-platform/internal/api/http/middleware"
	"agri-platform/internal/diagnosis"
	"agri-platform/internal/storage/history"
	"agri-platform/pkg/metrics"
)

const (
	formImage    = "image"
	formFarmerID = "farmer_id"

	errNoImage      = "No image uploaded"
	errNoFileChosen = "No selected file"
)

// Handler HTTP 处理器；history 可为 nil（不记录历史）
type Handler struct {
	diagnoser diagnosis.Diagnoser
	history   history.Store
}

// NewHandler 创建 HTTP 处理器
func NewHandler(diagnoser diagnosis.Diagnoser, store history.Store) *Handler {
	return &Handler{diagnoser: diagnoser, history: store}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func fail(c *app.RequestContext, status int, msg string) {
	c.JSON(status, errorBody{Success: false, Error: msg})
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "agri-diagnosis",
		"mock_mode": h.diagnoser == nil || h.diagnoser.Mock(),
	})
}

// DetectDisease 接收 multipart 图片并返回诊断结果
// POST /api/disease-detection
func (h *Handler) DetectDisease(ctx context.Context, c *app.RequestContext) {
	file, err := c.FormFile(formImage)
	if err != nil {
		if hasEmptyFilePart(c) {
			fail(c, consts.StatusBadRequest, errNoFileChosen)
		} else {
			fail(c, consts.StatusBadRequest, errNoImage)
		}
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		fail(c, consts.StatusBadRequest, errNoFileChosen)
		return
	}
	if h.diagnoser == nil {
		fail(c, consts.StatusServiceUnavailable, "diagnosis service is not configured")
		return
	}
	metrics.UploadBytes.Observe(float64(file.Size))

	path, err := saveUpload(file)
	if err != nil {
		hlog.CtxErrorf(ctx, "保存上传图片失败: %v request_id=%s", err, middleware.RequestIDFrom(c))
		fail(c, consts.StatusInternalServerError, "failed to store uploaded image")
		return
	}
	defer removeUpload(ctx, path)

	res := h.diagnoser.Diagnose(ctx, diagnosis.Request{
		Path:     path,
		MIMEType: file.Header.Get("Content-Type"),
	})
	h.record(ctx, strings.TrimSpace(string(c.FormValue(formFarmerID))), res)
	c.JSON(consts.StatusOK, res)
}

// ListDiagnoses 农户最近的诊断记录
// GET /api/diagnoses?farmer_id=&limit=
func (h *Handler) ListDiagnoses(ctx context.Context, c *app.RequestContext) {
	farmerID := strings.TrimSpace(c.Query(formFarmerID))
	if farmerID == "" {
		fail(c, consts.StatusBadRequest, "farmer_id is required")
		return
	}
	limit := history.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, consts.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = history.ClampLimit(n)
	}
	if h.history == nil {
		fail(c, consts.StatusServiceUnavailable, "history store is not configured")
		return
	}
	records, err := h.history.ListByFarmer(ctx, farmerID, limit)
	if err != nil {
		hlog.CtxErrorf(ctx, "查询诊断历史失败: farmer_id=%s err=%v", farmerID, err)
		fail(c, consts.StatusInternalServerError, "failed to load diagnosis history")
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	c.JSON(consts.StatusOK, map[string]interface{}{
		"success":   true,
		"farmer_id": farmerID,
		"diagnoses": records,
		"total":     len(records),
	})
}

// Metrics Prometheus 文本格式
// GET /metrics
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		hlog.CtxErrorf(ctx, "导出指标失败: %v", err)
		c.String(consts.StatusInternalServerError, err.Error())
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// record 记录成功诊断；失败只写日志，不影响响应
func (h *Handler) record(ctx context.Context, farmerID string, res diagnosis.Result) {
	if h.history == nil || farmerID == "" || !res.OK() {
		return
	}
	d := res.Diagnosis
	err := h.history.Save(ctx, &history.Record{
		FarmerID:        farmerID,
		PlantType:       d.PlantType,
		DiseaseDetected: d.DiseaseDetected,
		DiseaseName:     d.DiseaseName,
		Description:     d.Description,
		Recommendation:  d.Recommendation,
		IsMock:          d.IsMock,
	})
	if err != nil {
		hlog.CtxWarnf(ctx, "保存诊断历史失败: farmer_id=%s err=%v", farmerID, err)
	}
}

// hasEmptyFilePart 表单里有 image 字段但没有文件名（浏览器未选择文件）
func hasEmptyFilePart(c *app.RequestContext) bool {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return false
	}
	if _, ok := form.Value[formImage]; ok {
		return true
	}
	return len(form.File[formImage]) > 0
}

func saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "leaf-*"+uploadExt(fh.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// uploadExt 只保留短的字母数字扩展名，文件名本身不参与临时路径
func uploadExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

func removeUpload(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		hlog.CtxWarnf(ctx, "删除临时图片失败: path=%s err=%v", path, err)
	}
}
