package database

import (
	"audit_market_backend/internal/config"
	"audit_market_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedAuditServices(db)

	return db, nil
}

// Migrate 建表，测试用的 SQLite 初始化也走这里
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.AuditorProfile{},
		&model.GamificationAnalytics{},
		&model.BehavioralAnalytics{},
		&model.Badge{},
		&model.ChallengeProgress{},
		&model.Checkin{},
		&model.AuditService{},
	)
}

// 默认的审计服务目录，便于空库起步
func seedAuditServices(db *gorm.DB) {
	var count int64
	db.Model(&model.AuditService{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.AuditService{
		{
			Name:           "Smart Contract Security Review",
			Provider:       "ChainGuard Labs",
			Category:       "smart_contract",
			Description:    "Solidity/Vyper 合约的人工审计加静态分析",
			MinPriceUSD:    5000,
			MaxPriceUSD:    25000,
			TurnaroundDays: 10,
			Rating:         4.8,
			ReviewCount:    124,
			Chains:         []string{"ethereum", "polygon", "arbitrum"},
			Active:         true,
		},
		{
			Name:           "Protocol Audit",
			Provider:       "Obsidian Security",
			Category:       "protocol",
			Description:    "DeFi 协议整体架构与经济模型审计",
			MinPriceUSD:    20000,
			MaxPriceUSD:    80000,
			TurnaroundDays: 21,
			Rating:         4.9,
			ReviewCount:    67,
			Chains:         []string{"ethereum", "solana"},
			Active:         true,
		},
		{
			Name:           "Wallet Penetration Test",
			Provider:       "NullSec",
			Category:       "wallet",
			Description:    "移动端与浏览器扩展钱包的渗透测试",
			MinPriceUSD:    8000,
			MaxPriceUSD:    30000,
			TurnaroundDays: 14,
			Rating:         4.6,
			ReviewCount:    43,
			Chains:         []string{"ethereum", "bitcoin"},
			Active:         true,
		},
		{
			Name:           "Exchange Infrastructure Audit",
			Provider:       "ChainGuard Labs",
			Category:       "exchange",
			Description:    "中心化交易所热冷钱包与撮合系统安全评估",
			MinPriceUSD:    30000,
			MaxPriceUSD:    120000,
			TurnaroundDays: 30,
			Rating:         4.7,
			ReviewCount:    21,
			Chains:         []string{"ethereum", "bitcoin", "solana"},
			Active:         true,
		},
	}

	for i := range defaults {
		db.Create(&defaults[i])
	}
}
