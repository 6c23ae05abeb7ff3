package database

import (
	"fmt"
	"regexp"
	"stock-app/config"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Settings describes one database connection.
type Settings struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	// Log receives gorm warnings and errors. Nil discards them.
	Log *zap.Logger
}

// SettingsFromConfig copies the connection values loaded by config.LoadConfig.
func SettingsFromConfig() Settings {
	return Settings{
		Driver:     config.DBDriver,
		Host:       config.DBHost,
		Port:       config.DBPort,
		User:       config.DBUser,
		Password:   config.DBPassword,
		Name:       config.DBName,
		SSLMode:    config.DBSSLMode,
		SQLitePath: config.SQLitePath,
	}
}

func dialector(s Settings, dbName string) (gorm.Dialector, error) {
	switch s.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			s.Host, s.User, s.Password, dbName, s.Port, s.SSLMode)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			s.User, s.Password, s.Host, s.Port, dbName)
		return mysql.Open(dsn), nil
	case "mssql", "sqlserver":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			s.User, s.Password, s.Host, s.Port, dbName)
		return sqlserver.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(s.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", s.Driver)
	}
}

// Open connects to the configured database.
func Open(s Settings) (*gorm.DB, error) {
	d, err := dialector(s, s.Name)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:  NewGormLogger(s.Log),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", s.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if s.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

var validDBName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// EnsureDatabaseExists creates the target database on server drivers.
// SQLite creates its file on first open.
func EnsureDatabaseExists(s Settings) error {
	if s.Driver == "sqlite" {
		return nil
	}
	if !validDBName.MatchString(s.Name) {
		return fmt.Errorf("invalid database name %q", s.Name)
	}

	var server string
	switch s.Driver {
	case "postgres":
		server = "postgres"
	case "mssql", "sqlserver":
		server = "master"
	}

	d, err := dialector(s, server)
	if err != nil {
		return err
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("connect to database server: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	switch s.Driver {
	case "postgres":
		var exists bool
		if err := db.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", s.Name).Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			return nil
		}
		return db.Exec("CREATE DATABASE " + s.Name).Error
	case "mysql":
		return db.Exec("CREATE DATABASE IF NOT EXISTS " + s.Name).Error
	default:
		return db.Exec("IF DB_ID('" + s.Name + "') IS NULL CREATE DATABASE " + s.Name).Error
	}
}
