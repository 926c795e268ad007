// 生成课程文件清单 manifest.json
//
// 遍历存储桶中 courses/<分类>/<教师>/<课程>/[<章节>/]<文件>.<pdf|mp3|mp4>，
// 按路径排序后写入 JSON 数组，供前端静态读取。
//
// 用法: go run scripts/generate_manifest.go -o public/manifest.json

package main

import (
	"context"
	"english_edu_backend/internal/config"
	"english_edu_backend/internal/service"
	"english_edu_backend/pkg/logger"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	output := flag.String("o", "", "输出文件，默认使用 manifest.output")
	prefix := flag.String("prefix", "", "对象前缀，默认使用 manifest.prefix")
	verbose := flag.Bool("v", false, "输出被跳过的对象")
	flag.Parse()

	logger.InitConsole("generate_manifest", *verbose)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		logger.Log.Error("加载配置失败", zap.Error(err))
		os.Exit(1)
	}
	if *output == "" {
		*output = cfg.Manifest.Output
	}
	if *prefix == "" {
		*prefix = cfg.Manifest.Prefix
	}

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		logger.Log.Error("初始化存储失败", zap.Error(err))
		os.Exit(1)
	}

	// 公开地址以 public_url_base 为准，未配置时使用存储默认地址
	base := cfg.Storage.PublicURLBase
	if base == "" {
		base = storage.URL("")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	entries, err := service.GenerateManifest(ctx, storage, *prefix, base)
	if err != nil {
		logger.Log.Error("生成清单失败", zap.Error(err))
		os.Exit(1)
	}
	if err := service.WriteManifest(*output, entries); err != nil {
		logger.Log.Error("写入清单失败", zap.String("path", *output), zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("清单已生成", zap.String("path", *output), zap.Int("entries", len(entries)))
}
