package repositories

import (
	"gorm.io/gorm"
)

// BaseRepository provides common database functionality
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection
func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}

// Paginate is a shared scope for list endpoints. Page is 1-based.
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset((page - 1) * limit)
	}
}
