package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/services/repositories"
	"github.com/uandi-projects/game-platform/shared"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string

	users    *repositories.UserRepository
	invites  *repositories.InviteRepository
	games    *repositories.GameRepository
	progress *repositories.ProgressRepository
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Users() *repositories.UserRepository {
	return ds.users
}

func (ds *PostgresService) Invites() *repositories.InviteRepository {
	return ds.invites
}

func (ds *PostgresService) Games() *repositories.GameRepository {
	return ds.games
}

// Transaction runs fn against repositories bound to a single database
// transaction. Cross-repository writes that must commit together go
// through here.
func (ds *PostgresService) Transaction(fn func(tx *PostgresService) error) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresService{
			db:       tx,
			users:    repositories.NewUserRepository(tx),
			invites:  repositories.NewInviteRepository(tx),
			games:    repositories.NewGameRepository(tx),
			progress: repositories.NewProgressRepository(tx),
		})
	})
}

func (ds *PostgresService) Progress() *repositories.ProgressRepository {
	return ds.progress
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "game_platform"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			// Test the connection
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		// Exponential backoff with max delay of 10 seconds
		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.InviteToken{},
		&model.PasswordResetToken{},

		&model.GameInstance{},
		&model.GameParticipant{},
		&model.GameGuest{},

		&model.GameProgress{},
		&model.GameAnswer{},
	}

	err = ds.db.AutoMigrate(models...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.users = repositories.NewUserRepository(ds.db)
	ds.invites = repositories.NewInviteRepository(ds.db)
	ds.games = repositories.NewGameRepository(ds.db)
	ds.progress = repositories.NewProgressRepository(ds.db)

	err = ds.users.SeedInitialData()
	if err != nil {
		log.Printf("Failed to seed initial data: %v", err)
		return err
	}

	ticker := time.NewTicker(24 * time.Hour)
	go func() {
		for range ticker.C {
			err := ds.CleanupExpiredData()
			if err != nil {
				log.Printf("Failed to cleanup expired data: %v", err)
			}
		}
	}()

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) CleanupExpiredData() error {
	return ds.invites.CleanupExpiredTokens()
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string
	var message string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
		message = "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
		message = "Resource already exists"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest // 400
		errorType = "FOREIGN_KEY_VIOLATION"
		message = "Invalid reference"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
		message = "Internal server error"
	default:
		// Check for PostgreSQL-specific errors
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
			message = "Resource already exists"
		} else if strings.Contains(err.Error(), "relation") && strings.Contains(err.Error(), "does not exist") {
			statusCode = http.StatusInternalServerError // 500
			errorType = "SCHEMA_ERROR"
			message = "Internal server error"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable // 503
			errorType = "DATABASE_CONNECTION_ERROR"
			message = "Service temporarily unavailable"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
			message = "Internal server error"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return shared.NewAppError(statusCode, message)
}
