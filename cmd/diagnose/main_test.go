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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const mockConfig = `
model:
  vision:
    default: gemini
    providers:
      gemini:
        api_key: ""
log:
  level: error
`

func TestRun_MockModePrintsFixedResult(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	img := filepath.Join(t.TempDir(), "leaf.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\nleaf"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeConfig(t, mockConfig), img}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `"is_mock":true`)
	assert.Contains(t, stdout.String(), `"plant_type":"Unknown Leaf (Mock Mode)"`)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.True(t, strings.Contains(stderr.String(), "Usage: diagnose"))
}

func TestRun_LiveFailureExitCode(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := writeConfig(t, `
model:
  vision:
    default: gemini
    providers:
      gemini:
        api_key: test-key
        base_url: http://127.0.0.1:1
        max_retries: 0
log:
  level: error
`)
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("not a leaf"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, notImage}, &stdout, &stderr)
	assert.Equal(t, 3, code)
	assert.Contains(t, stdout.String(), `"success":false`)
	assert.Contains(t, stdout.String(), "unsupported image format")
}
