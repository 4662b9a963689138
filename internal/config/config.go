package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// MysqlConfig selects the database. Driver "sqlite" opens SqlitePath
// instead of the MySQL server, for single-node deployments.
type MysqlConfig struct {
	Driver       string `toml:"driver"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	SqlitePath   string `toml:"sqlitePath"`
}

type LogConfig struct {
	LogPath    string `toml:"logPath"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAgeDays int    `toml:"maxAgeDays"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type KafkaConfig struct {
	Brokers           []string `toml:"brokers"`
	ClientID          string   `toml:"clientID"`
	TelemetryTopic    string   `toml:"telemetryTopic"`
	NotificationTopic string   `toml:"notificationTopic"`
	TelemetryGroupID  string   `toml:"telemetryGroupID"`
	DeliveryGroupID   string   `toml:"deliveryGroupID"`
	Partitions        int32    `toml:"partitions"`
	Replication       int16    `toml:"replication"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

// EngineConfig holds the engine defaults. Tenant policy rows override the
// staleness, dedup and auto-hold values per tenant.
type EngineConfig struct {
	ClockSkewHours            int    `toml:"clockSkewHours"`
	StalenessMinutes          int    `toml:"stalenessMinutes"`
	DedupWindowHours          int    `toml:"dedupWindowHours"`
	AutoHoldOnCritical        bool   `toml:"autoHoldOnCritical"`
	MaxRaceRetries            int    `toml:"maxRaceRetries"`
	RequestTimeoutSeconds     int    `toml:"requestTimeoutSeconds"`
	BatchRetentionDays        int    `toml:"batchRetentionDays"`
	NotificationRetentionDays int    `toml:"notificationRetentionDays"`
	SweepCron                 string `toml:"sweepCron"`
	RetentionCron             string `toml:"retentionCron"`
	PolicyCacheSeconds        int    `toml:"policyCacheSeconds"`
}

type RelayConfig struct {
	BatchSize      int `toml:"batchSize"`
	PollIntervalMs int `toml:"pollIntervalMs"`
}

type TlsConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"certFile"`
	KeyFile  string `toml:"keyFile"`
}

type Config struct {
	MainConfig   `toml:"mainConfig"`
	MysqlConfig  `toml:"mysqlConfig"`
	JwtConfig    `toml:"jwtConfig"`
	KafkaConfig  `toml:"kafkaConfig"`
	LogConfig    `toml:"logConfig"`
	RedisConfig  `toml:"redisConfig"`
	EngineConfig `toml:"engineConfig"`
	RelayConfig  `toml:"relayConfig"`
	TlsConfig    `toml:"tlsConfig"`
}

var config *Config

const defaultConfigPath = "configs/config_local.toml"

func LoadConfig() error {
	configPath := strings.TrimSpace(os.Getenv("GRAINHERO_CONFIG"))
	if configPath == "" {
		configPath = defaultConfigPath
	}
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("load config %s failed: %v, falling back to defaults", configPath, err)
		return err
	}
	return nil
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
		config.applyDefaults()
	}
	return config
}

func (c *Config) applyDefaults() {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "GrainHero"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	e := &c.EngineConfig
	if e.ClockSkewHours <= 0 {
		e.ClockSkewHours = 24
	}
	if e.StalenessMinutes <= 0 {
		e.StalenessMinutes = 15
	}
	if e.DedupWindowHours <= 0 {
		e.DedupWindowHours = 6
	}
	if e.MaxRaceRetries <= 0 {
		e.MaxRaceRetries = 3
	}
	if e.RequestTimeoutSeconds <= 0 {
		e.RequestTimeoutSeconds = 10
	}
	if e.BatchRetentionDays <= 0 {
		e.BatchRetentionDays = 90
	}
	if e.NotificationRetentionDays <= 0 {
		e.NotificationRetentionDays = 90
	}
	if e.SweepCron == "" {
		e.SweepCron = "*/5 * * * *"
	}
	if e.RetentionCron == "" {
		e.RetentionCron = "30 3 * * *"
	}
	if e.PolicyCacheSeconds <= 0 {
		e.PolicyCacheSeconds = 60
	}
	k := &c.KafkaConfig
	if k.TelemetryTopic == "" {
		k.TelemetryTopic = "grain.telemetry"
	}
	if k.NotificationTopic == "" {
		k.NotificationTopic = "grain.notifications"
	}
	if k.TelemetryGroupID == "" {
		k.TelemetryGroupID = "grainhero-telemetry"
	}
	if k.DeliveryGroupID == "" {
		k.DeliveryGroupID = "grainhero-delivery"
	}
}

func (e EngineConfig) ClockSkew() time.Duration {
	return time.Duration(e.ClockSkewHours) * time.Hour
}

func (e EngineConfig) Staleness() time.Duration {
	return time.Duration(e.StalenessMinutes) * time.Minute
}

func (e EngineConfig) DedupWindow() time.Duration {
	return time.Duration(e.DedupWindowHours) * time.Hour
}

func (e EngineConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutSeconds) * time.Second
}
