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
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ErrInvalidImage 图像无法读取或不是受支持的图片格式
var ErrInvalidImage = errors.New("invalid image")

// Request 图像句柄：Path、Data、Reader 三选一；管线返回后不再持有
type Request struct {
	Path     string
	Data     []byte
	Reader   io.Reader
	MIMEType string // 可选的类型提示，仅在内容探测无法识别时使用
}

// FromPath 以文件路径构造请求
func FromPath(path string) Request { return Request{Path: path} }

// FromBytes 以内存数据构造请求
func FromBytes(data []byte) Request { return Request{Data: data} }

// FromReader 以流构造请求
func FromReader(r io.Reader) Request { return Request{Reader: r} }

type image struct {
	data     []byte
	mimeType string
}

// load 读取全部图像字节并校验格式，最多读取 maxBytes
func (r Request) load(maxBytes int64) (image, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case r.Path != "":
		data, err = readFile(r.Path, maxBytes)
	case r.Data != nil:
		if int64(len(r.Data)) > maxBytes {
			return image{}, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, maxBytes)
		}
		data = r.Data
	case r.Reader != nil:
		data, err = readLimited(r.Reader, maxBytes)
	default:
		return image{}, fmt.Errorf("%w: no image supplied", ErrInvalidImage)
	}
	if err != nil {
		return image{}, err
	}
	if len(data) == 0 {
		return image{}, fmt.Errorf("%w: image is empty", ErrInvalidImage)
	}

	mimeType, err := detectImageType(data, r.MIMEType)
	if err != nil {
		return image{}, err
	}
	return image{data: data, mimeType: mimeType}, nil
}

func readFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	defer f.Close()
	return readLimited(f, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", ErrInvalidImage, err)
	}
	if n > maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidImage, maxBytes)
	}
	return buf.Bytes(), nil
}

func detectImageType(data []byte, hint string) (string, error) {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	// HEIC 等格式无法被内容探测识别，此时信任调用方提供的 image/* 提示
	if sniffed == "application/octet-stream" && strings.HasPrefix(strings.ToLower(hint), "image/") {
		return strings.ToLower(hint), nil
	}
	return "", fmt.Errorf("%w: unsupported image format %q", ErrInvalidImage, sniffed)
}
