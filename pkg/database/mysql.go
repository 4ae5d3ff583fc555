package database

import (
	"fmt"
	"qa-session-go/internal/model"
	"qa-session-go/pkg/log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 连接并迁移会话相关的表。
func InitMySQL(dsn string) error {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := DB.AutoMigrate(&model.Conversation{}, &model.ConversationMessage{}); err != nil {
		return fmt.Errorf("failed to migrate conversation tables: %w", err)
	}

	log.Info("MySQL 连接成功，会话表已就绪")
	return nil
}
