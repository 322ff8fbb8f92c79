package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/coursekeeper-backend/internal/platform/envutil"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	MySQLDSN   string
	SQLitePath string

	SlowThreshold time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Driver:           strings.ToLower(envutil.String("DB_DRIVER", DriverPostgres)),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "coursekeeper"),
		MySQLDSN:         envutil.String("MYSQL_DSN", ""),
		SQLitePath:       envutil.String("SQLITE_PATH", "coursekeeper.db"),
		SlowThreshold:    envutil.Millis("DB_SLOW_THRESHOLD_MS", time.Second),
	}
}

// Store owns the catalog database handle. It is opened once at process start and closed at
// shutdown; nothing else holds a package-level connection.
type Store struct {
	db     *gorm.DB
	log    *logger.Logger
	driver string
}

func Open(logg *logger.Logger, cfg Config) (*Store, error) {
	serviceLog := logg.With("service", "CatalogStore", "driver", cfg.Driver)

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	serviceLog.Info("Catalog store connected")
	return &Store{db: db, log: serviceLog, driver: cfg.Driver}, nil
}

// Wrap adopts an already opened handle, mostly for tests.
func Wrap(db *gorm.DB, logg *logger.Logger) *Store {
	return &Store{db: db, log: logg.With("service", "CatalogStore"), driver: db.Dialector.Name()}
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres, "postgresql":
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.PostgresUser,
			cfg.PostgresPassword,
			cfg.PostgresHost,
			cfg.PostgresPort,
			cfg.PostgresName,
		)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		if strings.TrimSpace(cfg.MySQLDSN) == "" {
			return nil, fmt.Errorf("missing MYSQL_DSN")
		}
		return mysql.Open(cfg.MySQLDSN), nil
	case DriverSQLite, "sqlite3":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Driver() string { return s.driver }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.log.Info("Catalog store closing")
	return sqlDB.Close()
}
