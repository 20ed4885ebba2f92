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


// diagnose 在本地对单张叶片图片运行诊断管线并输出结果 JSON
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"agri-platform/internal/app"
	"agri-platform/internal/diagnosis"
	"agri-platform/pkg/config"
	"agri-platform/pkg/tracing"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("diagnose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "配置文件路径（默认 CONFIG_PATH 或 configs/api.yaml）")
	pretty := fs.Bool("pretty", false, "缩进输出 JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: diagnose [-config path] [-pretty] <image>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}

	ctx := context.Background()
	if tc := cfg.Monitoring.Tracing; tc.Enable && tc.ExportEndpoint != "" {
		serviceName := tc.ServiceName
		if serviceName == "" {
			serviceName = "agri-diagnose"
		}
		tp, err := tracing.InitTracer(tracing.OTelConfig{
			ServiceName:    serviceName,
			ExportEndpoint: tc.ExportEndpoint,
			Insecure:       tc.Insecure,
		})
		if err != nil {
			fmt.Fprintf(stderr, "初始化链路追踪失败: %v\n", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	bootstrap, err := app.NewBootstrap(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "初始化失败: %v\n", err)
		return 1
	}
	defer bootstrap.Close()

	res := bootstrap.Pipeline.Diagnose(ctx, diagnosis.FromPath(fs.Arg(0)))
	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(res, "", "  ")
	} else {
		out, err = json.Marshal(res)
	}
	if err != nil {
		fmt.Fprintf(stderr, "序列化结果失败: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	if !res.OK() {
		return 3
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.LoadAPIConfig()
}
