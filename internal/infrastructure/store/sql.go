package store

import (
	"context"
	"fmt"
	"time"

	"recipe-finder/internal/core/recipe"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLSource 透過 gorm 讀取資料表，本機使用 sqlite，正式環境使用 postgres
type SQLSource struct {
	db    *gorm.DB
	table string
}

// OpenSQL 開啟資料庫連線
func OpenSQL(driver, dsn, table string) (*SQLSource, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	return NewSQLSource(db, table), nil
}

// NewSQLSource 以既有連線建立資料來源
func NewSQLSource(db *gorm.DB, table string) *SQLSource {
	return &SQLSource{db: db, table: table}
}

// Load 讀取整張資料表，欄位清單來自資料表結構
func (s *SQLSource) Load(ctx context.Context) (recipe.Dataset, error) {
	db := s.db.WithContext(ctx)

	columnTypes, err := db.Migrator().ColumnTypes(s.table)
	if err != nil {
		return recipe.Dataset{}, fmt.Errorf("failed to inspect table %s: %w", s.table, err)
	}
	columns := make([]string, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ct.Name()
	}

	var rows []map[string]interface{}
	if err := db.Table(s.table).Find(&rows).Error; err != nil {
		return recipe.Dataset{}, fmt.Errorf("failed to load recipes from %s: %w", s.table, err)
	}

	ds := recipe.Dataset{Columns: columns, Rows: make([]recipe.Row, len(rows))}
	for i, r := range rows {
		ds.Rows[i] = recipe.Row(r)
	}
	return ds, nil
}

// Ping 檢查資料庫連線
func (s *SQLSource) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 關閉資料庫連線
func (s *SQLSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
