package database

import (
	"fmt"
	"log"

	"vibeit_backend/internal/config"
	"vibeit_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 自动迁移表结构并写入默认课程
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseProgress{},
		&model.UserMilestone{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")

	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count == 0 {
		defaultCourses := []model.Course{
			{Slug: "javascript-fundamentals", Title: "JavaScript Fundamentals", Description: "Variables, functions and the event loop", LessonCount: 12, Published: true},
			{Slug: "react-basics", Title: "React Basics", Description: "Components, props and hooks", LessonCount: 10, Published: true},
			{Slug: "typescript-essentials", Title: "TypeScript Essentials", Description: "Types, generics and narrowing", LessonCount: 8, Published: true},
		}
		for i := range defaultCourses {
			if err := db.Create(&defaultCourses[i]).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
