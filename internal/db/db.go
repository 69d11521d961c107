package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coursehub-backend/internal/config"
	"coursehub-backend/internal/model"
)

// Open connects to Postgres using the loaded configuration and applies
// the pool settings. Callers own the returned handle; nothing in this
// package keeps global state.
func Open(cfg *config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password.Resolve(), cfg.Name, cfg.SSLMode)

	var (
		conn *gorm.DB
		err  error
	)
	// The database container can lag behind the app on startup.
	for attempt := 0; attempt < 5; attempt++ {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetime) * time.Second)
	}

	return conn, nil
}

// AutoMigrate creates or updates the engine's tables, including the
// unique indexes the issuance path relies on.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&model.User{},
		&model.Chapter{},
		&model.Quiz{},
		&model.Assignment{},
		&model.CompletionFact{},
		&model.Submission{},
		&model.FinalExam{},
		&model.FinalExamQuestion{},
		&model.FinalExamAttempt{},
		&model.CertificatePolicy{},
		&model.Certificate{},
	)
}
