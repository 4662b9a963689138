package initial

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"GrainHero/internal/config"
	"GrainHero/internal/initial/schema"
	"GrainHero/pkg/zlog"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMysql  = "mysql"
	DriverSqlite = "sqlite"
)

// OpenDatabase connects to the configured database and migrates the schema.
func OpenDatabase(conf *config.Config) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormConf := &gorm.Config{
		Logger:  gormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(conf.MysqlConfig.Driver)) {
	case DriverSqlite:
		path := conf.MysqlConfig.SqlitePath
		if path == "" {
			path = conf.MainConfig.AppName + ".db"
		}
		db, err = gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), gormConf)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			// single writer
			sqlDB.SetMaxOpenConns(1)
		}
		zlog.Info("database driver sqlite", zap.String("path", path))
	default:
		dbName := conf.MysqlConfig.DatabaseName
		if dbName == "" {
			dbName = conf.MainConfig.AppName
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			conf.MysqlConfig.User, conf.MysqlConfig.Password, conf.MysqlConfig.Host, conf.MysqlConfig.Port, dbName)
		db, err = gorm.Open(mysql.Open(dsn), gormConf)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			sqlDB.SetMaxOpenConns(50)
			sqlDB.SetMaxIdleConns(10)
			sqlDB.SetConnMaxLifetime(time.Hour)
		}
		zlog.Info("database driver mysql",
			zap.String("host", conf.MysqlConfig.Host), zap.Int("port", conf.MysqlConfig.Port))
	}
	if err != nil {
		return nil, err
	}

	if err := schema.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
