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
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"agri-platform/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	switch cmd {
	case "version":
		fmt.Println("agri cli 0.1.0")
	case "health":
		runHealth()
	case "config":
		runConfig()
	case "server":
		if len(args) > 0 && args[0] == "start" {
			runServerStart()
		} else {
			fmt.Fprintf(os.Stderr, "Usage: agri server start\n")
			os.Exit(1)
		}
	case "detect":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: agri detect <image> [farmer_id]\n")
			os.Exit(1)
		}
		farmerID := ""
		if len(args) > 1 {
			farmerID = args[1]
		}
		runDetect(args[0], farmerID)
	case "history":
		if len(args) < 1 {
			fmt.Fprintf(os.Stderr, "Usage: agri history <farmer_id> [limit]\n")
			os.Exit(1)
		}
		limit := 0
		if len(args) > 1 {
			limit, _ = strconv.Atoi(args[1])
		}
		runHistory(args[0], limit)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: agri <command> [args]")
	fmt.Println("  version                  - 显示版本")
	fmt.Println("  health                   - 服务健康检查（含 mock 模式）")
	fmt.Println("  config                   - 显示配置概要")
	fmt.Println("  server start             - 启动 API 服务（go run ./cmd/api）")
	fmt.Println("  detect <image> [farmer]  - 上传叶片图片并输出诊断结果")
	fmt.Println("  history <farmer> [limit] - 列出农户最近的诊断记录")
	fmt.Println("环境变量 AGRI_API_URL 指定服务地址，默认 http://localhost:8000")
}

func runHealth() {
	out, err := getHealth()
	if err != nil {
		fmt.Fprintf(os.Stderr, "健康检查失败: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
}

func runConfig() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	provider, pc := cfg.VisionProvider()
	fmt.Printf("api.addr=%s\n", cfg.Addr())
	fmt.Printf("model.vision.default=%s\n", provider)
	fmt.Printf("model.vision.model=%s\n", pc.Model)
	fmt.Printf("mock_mode=%t\n", pc.APIKey == "")
	fmt.Printf("diagnosis.timeout=%s\n", cfg.Diagnosis.Timeout)
	fmt.Printf("storage.history.type=%s\n", cfg.Storage.History.Type)
}

func runServerStart() {
	c := exec.Command("go", "run", "./cmd/api")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Dir = "."
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start: %v\n", err)
		os.Exit(1)
	}
}

func runDetect(imagePath, farmerID string) {
	if _, err := os.Stat(imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "无法读取图片: %v\n", err)
		os.Exit(1)
	}
	out, err := detectDisease(imagePath, farmerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "诊断请求失败: %v\n", err)
		os.Exit(1)
	}
	printJSON(out)
	if ok, _ := out["success"].(bool); !ok {
		os.Exit(2)
	}
}

func runHistory(farmerID string, limit int) {
	records, err := listDiagnoses(farmerID, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "查询历史失败: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("(无记录)")
		return
	}
	for _, r := range records {
		fmt.Println(formatRecord(r))
	}
}

func formatRecord(r map[string]interface{}) string {
	created, _ := r["created_at"].(string)
	plant, _ := r["plant_type"].(string)
	disease, _ := r["disease_name"].(string)
	line := fmt.Sprintf("%s  %s  %s", created, plant, disease)
	if mock, _ := r["is_mock"].(bool); mock {
		line += "  [mock]"
	}
	return line
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(b))
}
