package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/pizza-nz/hotel-service/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the connection pool shared by every repository.
type Store struct {
	DB *sqlx.DB

	cfg config.Database
}

// Open connects to the configured database, retrying with backoff so the
// desk can come up alongside the database server.
func Open(cfg config.Database, log *slog.Logger) (*Store, error) {
	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect(driverName, dsn)
		if err == nil {
			break
		}
		log.Warn("failed to connect to database", "attempt", i+1, "max", maxRetries, "err", err)
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 2 * time.Second)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("could not connect to database after %d attempts: %w", maxRetries, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return &Store{DB: db, cfg: cfg}, nil
}

func dataSource(cfg config.Database) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		return "postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode), nil
	case config.DriverSQLite:
		return "sqlite", cfg.Path, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func migrationURL(cfg config.Database) string {
	if cfg.Driver == config.DriverSQLite {
		return "sqlite://" + cfg.Path
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Store) Migrate(log *slog.Logger) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrationURL(s.cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// HealthCheck performs a database health check
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
