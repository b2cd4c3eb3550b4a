package models

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Daskott/folio/shared"
	"github.com/Daskott/folio/utils"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

const (
	DEFAULT_MYSQL_PORT    = 3306
	DEFAULT_POSTGRES_PORT = 5432

	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// OpenStore connects to the store described by config and verifies the connection.
func OpenStore(config shared.StoreConfig, logg *zap.SugaredLogger) (*Store, error) {
	dialector, conn, err := newDialector(config)
	if err != nil {
		return nil, err
	}

	db, err := openDB(dialector, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %v", config.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if config.Driver == shared.SQLITE_DRIVER {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
	}

	store := NewStore(db)
	if err := store.Ping(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%s store is unreachable: %v", config.Driver, err)
	}

	logg.Infof("Connected to %s store %q", config.Driver, config.Database)

	return store, nil
}

// openDB opens gorm on dialector. conn is the connection the dialector was
// built on, if any; it is closed when gorm fails to open.
func openDB(dialector gorm.Dialector, conn *sql.DB, opts ...gorm.Option) (*gorm.DB, error) {
	opts = append([]gorm.Option{&gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}}, opts...)

	db, err := gorm.Open(dialector, opts...)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}

	return db, nil
}

// newDialector returns the gorm dialector for config.Driver. For sqlite it also
// returns the *sql.DB it opened, which the caller owns.
func newDialector(config shared.StoreConfig) (gorm.Dialector, *sql.DB, error) {
	switch config.Driver {
	case shared.MYSQL_DRIVER:
		return mysql.Open(mysqlDSN(config)), nil, nil
	case shared.POSTGRES_DRIVER:
		return postgres.Open(postgresDSN(config)), nil, nil
	case shared.SQLITE_DRIVER:
		if err := utils.CreateParentDirIfNotExist(config.Database); err != nil {
			return nil, nil, err
		}

		// modernc's pure Go driver registers itself as "sqlite"
		sqlDB, err := sql.Open("sqlite", sqliteDSN(config))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %v", err)
		}

		return sqlite.Dialector{DriverName: "sqlite", DSN: config.Database, Conn: sqlDB}, sqlDB, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", config.Driver)
	}
}

func mysqlDSN(config shared.StoreConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.User,
		config.Password,
		config.Host,
		portOrDefault(config.Port, DEFAULT_MYSQL_PORT),
		config.Database,
	)
}

func postgresDSN(config shared.StoreConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Host,
		portOrDefault(config.Port, DEFAULT_POSTGRES_PORT),
		config.User,
		config.Password,
		config.Database,
	)
}

func sqliteDSN(config shared.StoreConfig) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", config.Database)
}

func portOrDefault(port, defaultPort int) int {
	if port == 0 {
		return defaultPort
	}
	return port
}
