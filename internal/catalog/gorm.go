package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/mfairbank/restocalc/internal/log"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormRepository reads catalog entries from a Postgres database via GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository connects to Postgres and ensures the catalog table
// exists.
func NewGormRepository(connectionString string) (*GormRepository, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to catalog database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("unable to migrate catalog schema: %w", err)
	}

	return &GormRepository{db: db}, nil
}

// All returns every catalog entry ordered by ID.
func (r *GormRepository) All(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.db.WithContext(ctx).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query equipment catalog: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
