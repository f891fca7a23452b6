package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/marketplace/internal/models"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned when a compare-and-swap write lost to a
// concurrent writer. Callers reload and retry.
var ErrStaleVersion = errors.New("stale version")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// WithTx binds the repository to an open transaction.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}

// Transaction runs fn inside one database transaction. Everything fn does
// through the passed repository commits or rolls back together.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
