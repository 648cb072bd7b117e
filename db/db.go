package db

import (
	"fmt"
	"os"

	"toolshed/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(log *zap.Logger) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if err := Migrate(conn); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("database connected")
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{},
		&models.Tool{}, &models.ToolRequest{}, &models.ActivityLog{},
	); err != nil {
		return err
	}

	// 一个申请人对同一工具最多一条活跃申请
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_requester
	  ON %s (tool_id, requester_id)
	  WHERE status IN ('pending', 'approved');
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// 同一工具最多一条已批准（借出中）的申请
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_approved_per_tool
	  ON %s (tool_id)
	  WHERE status = 'approved';
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	// 详情页按创建时间倒序取申请列表
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_tool_createdat_desc
	  ON %s (tool_id, created_at DESC);
	`, models.RequestTable, models.RequestTable)).Error; err != nil {
		return err
	}

	return nil
}
