package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	gormmysql "gorm.io/driver/mysql"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database with pooling and retry. DB_DRIVER selects the
// dialect: "mysql" (default) for production, "sqlite" for local runs and
// tests (DB_DSN ":memory:" gives an in-memory database).
func Connect() (*gorm.DB, error) {
	driver := strings.ToLower(getenv("DB_DRIVER", "mysql"))

	// GORM logger: verbose in development
	var gormLogger logger.Interface
	if strings.ToLower(getenv("ENV", "development")) == "development" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	} else {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	cfg := &gorm.Config{Logger: gormLogger}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dsn := getenv("DB_DSN", "marketplace.db")
		dialector = gormsqlite.Open(dsn)
	default:
		dialector = gormmysql.Open(mysqlDSN())
	}

	// Retry connection with exponential backoff
	maxRetries := atoi(getenv("DB_CONNECT_RETRIES", "5"))
	if maxRetries < 1 {
		maxRetries = 1
	}
	var db *gorm.DB
	var err error
	backoff := time.Second
	for attempt := 0; attempt < maxRetries; attempt++ {
		db, err = gorm.Open(dialector, cfg)
		if err == nil {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(atoi(getenv("DB_MAX_OPEN_CONNS", "25")))
	sqlDB.SetMaxIdleConns(atoi(getenv("DB_MAX_IDLE_CONNS", "25")))
	sqlDB.SetConnMaxLifetime(time.Duration(atoi(getenv("DB_CONN_MAX_LIFETIME", "3600"))) * time.Second)

	if getenv("DB_PING_ON_CONNECT", "true") == "true" {
		if err := pingWithTimeout(sqlDB, 5*time.Second); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
	}

	return db, nil
}

func mysqlDSN() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}

	host := getenv("DB_HOST", "127.0.0.1")
	port := getenv("DB_PORT", "3306")
	user := getenv("DB_USER", "root")
	pass := getenv("DB_PASS", "")
	name := getenv("DB_NAME", "marketplace")
	params := getenv("DB_PARAMS", "charset=utf8mb4&parseTime=True&loc=UTC")

	// Connection timeouts unless the caller set their own
	if !strings.Contains(params, "timeout=") {
		params = params + "&timeout=10s"
	}
	if !strings.Contains(params, "readTimeout=") {
		params = params + "&readTimeout=10s"
	}
	if !strings.Contains(params, "writeTimeout=") {
		params = params + "&writeTimeout=10s"
	}
	if tlsMode := os.Getenv("DB_TLS"); tlsMode != "" && !strings.Contains(params, "tls=") {
		params = params + "&tls=" + tlsMode
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, name, params)

	safeDSN := dsn
	if pass != "" {
		safeDSN = strings.Replace(safeDSN, pass, "******", 1)
	}
	log.Printf("[database] using DSN: %s", safeDSN)

	return dsn
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	if v <= 0 {
		return 0
	}
	return v
}

func pingWithTimeout(db *sql.DB, timeout time.Duration) error {
	ch := make(chan error, 1)
	go func() {
		ch <- db.Ping()
	}()
	select {
	case err := <-ch:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("ping timeout after %s", timeout)
	}
}
