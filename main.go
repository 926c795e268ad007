// @title EnglishEdu API
// @version 1.0
// @description 英语学习平台后端。
// @description 公开接口：注册登录、已发布课程、已发布考试。
// @description 学员：作答提交、成绩查询、下单支付、我的课程。
// @description 教师：题库、评分标准、考试编排、课程章节课时及文件上传。
// @description 管理员：考试审核、账号启用与禁用。

// @contact.name EnglishEdu 后端
// @contact.email dev@english-edu.local

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description "Bearer <token>"

// @tag.name 认证
// @tag.name 课程
// @tag.name 课程管理
// @tag.name 考试
// @tag.name 题库
// @tag.name 管理员
// @tag.name 系统
// @tag.name 订单
// @tag.name 文件
// @tag.name 用户管理

package main

import (
	"english_edu_backend/internal/app"
	"english_edu_backend/internal/config"
	"english_edu_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
