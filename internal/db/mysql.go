package db

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"auratask/internal/model"
)

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate applies the schema migration list in order.
func Migrate(db *gorm.DB) error {
	for _, schema := range model.Migrations() {
		if err := db.AutoMigrate(schema); err != nil {
			return fmt.Errorf("migrate %T: %w", schema, err)
		}
	}
	return nil
}

// Ping checks connectivity against the underlying connection pool.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
