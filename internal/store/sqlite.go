package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kasrat/countryscrape/internal/scrape"
)

// countryRow is the gorm model for the countries table.
type countryRow struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string  `gorm:"column:country_name;not null"`
	Capital    *string `gorm:"column:capital"`
	Population *int64  `gorm:"column:population"`
	Area       *int64  `gorm:"column:area"`
}

// TableName maps the model onto the fixed destination table.
func (countryRow) TableName() string { return TableName }

// SQLiteProvider implements Provider on a file-backed SQLite database.
// This is the default backend: the whole store is one local file.
type SQLiteProvider struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteProvider opens (creating if necessary) the database file at path.
func NewSQLiteProvider(path string, logger *zap.Logger) (*SQLiteProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	logger.Info("Opened SQLite store", zap.String("path", path))
	return &SQLiteProvider{db: db, logger: logger}, nil
}

// Init migrates the schema and clears prior contents (full refresh).
func (p *SQLiteProvider) Init(ctx context.Context) error {
	if err := p.db.WithContext(ctx).AutoMigrate(&countryRow{}); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, err)
	}
	refresh := p.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := refresh.Delete(&countryRow{}).Error; err != nil {
		return fmt.Errorf("clear %s: %w", TableName, err)
	}
	return nil
}

// WriteBatch inserts all records inside one transaction.
func (p *SQLiteProvider) WriteBatch(ctx context.Context, records []scrape.Country) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]countryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, countryRow{
			Name:       r.Name,
			Capital:    r.Capital,
			Population: r.Population,
			Area:       r.Area,
		})
	}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("insert %d rows into %s: %w", len(rows), TableName, err)
	}
	p.logger.Info("Stored country records", zap.Int("count", len(rows)))
	return nil
}

// Sample returns the first n rows ordered by id.
func (p *SQLiteProvider) Sample(ctx context.Context, n int) ([]Row, error) {
	var rows []countryRow
	if err := p.db.WithContext(ctx).Order("id").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sample %s: %w", TableName, err)
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, Row{
			ID:         r.ID,
			Name:       r.Name,
			Capital:    r.Capital,
			Population: r.Population,
			Area:       r.Area,
		})
	}
	return out, nil
}

// TotalPopulation sums the population column; NULL stays NULL.
func (p *SQLiteProvider) TotalPopulation(ctx context.Context) (*int64, error) {
	row := p.db.WithContext(ctx).Table(TableName).Select("SUM(population)").Row()
	var total sql.NullInt64
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("sum population: %w", err)
	}
	if !total.Valid {
		return nil, nil
	}
	return &total.Int64, nil
}

// Close releases the underlying database handle.
func (p *SQLiteProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sqlite handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
