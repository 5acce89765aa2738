// 手动重建 Redis XP 排行榜脚本
//
// 排行榜在正常运行时由加 XP 的写路径增量维护。
// 此脚本仅用于手动触发，例如 Redis 被清空或从备份恢复数据库之后，
// 从 auditor_profiles 表全量重建 ZSET。
//
// 用法: go run scripts/rebuild_leaderboard.go

package main

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/model"
	"audit_market_backend/pkg/database"
	"audit_market_backend/pkg/logger"
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"gopkg.in/yaml.v3"
)

const leaderboardKey = "audit_market:leaderboard:xp"

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Redis 连接失败: %v", err)
	}

	ctx := context.Background()

	var profiles []model.AuditorProfile
	if err := db.Find(&profiles).Error; err != nil {
		log.Fatalf("读取审计师画像失败: %v", err)
	}

	if err := rdb.Del(ctx, leaderboardKey).Err(); err != nil {
		log.Fatalf("清空旧排行榜失败: %v", err)
	}

	members := make([]*redis.Z, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, &redis.Z{
			Score:  float64(p.XP),
			Member: strconv.FormatUint(uint64(p.ID), 10),
		})
	}

	if len(members) > 0 {
		if err := rdb.ZAdd(ctx, leaderboardKey, members...).Err(); err != nil {
			log.Fatalf("写入排行榜失败: %v", err)
		}
	}

	log.Printf("排行榜重建完成，共 %d 位审计师", len(members))
}
