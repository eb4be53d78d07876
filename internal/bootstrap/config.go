package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	IsLocalCors      bool          `mapstructure:"LOCAL_CORS"`
	StoreBackend     string        `mapstructure:"STORE_BACKEND"`
	BadgerPath       string        `mapstructure:"BADGER_PATH"`
	BadgerInMemory   bool          `mapstructure:"BADGER_IN_MEMORY"`
	SqlitePath       string        `mapstructure:"SQLITE_PATH"`
	RedisUrl         string        `mapstructure:"REDIS_URL"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	MongoUri         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	StoreDialTimeout time.Duration `mapstructure:"STORE_DIAL_TIMEOUT"`
	FlushWindow      time.Duration `mapstructure:"FLUSH_WINDOW"`
	MaxPayloadBytes  int           `mapstructure:"MAX_PAYLOAD_BYTES"`
	HistoryLimit     int           `mapstructure:"HISTORY_LIMIT"`
	ImportChunkSize  int           `mapstructure:"IMPORT_CHUNK_SIZE"`
}

const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendSqlite = "sqlite"
	BackendMongo  = "mongo"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOCAL_CORS", false)
	v.SetDefault("STORE_BACKEND", BackendBadger)
	v.SetDefault("BADGER_PATH", "data/badger")
	v.SetDefault("BADGER_IN_MEMORY", false)
	v.SetDefault("SQLITE_PATH", "data/sessions.db")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "opening_tree")
	v.SetDefault("STORE_DIAL_TIMEOUT", "5s")
	v.SetDefault("FLUSH_WINDOW", "1s")
	v.SetDefault("MAX_PAYLOAD_BYTES", 8<<20)
	v.SetDefault("HISTORY_LIMIT", 100)
	v.SetDefault("IMPORT_CHUNK_SIZE", 50)
}

// Setup reads cfgPath (a .env file) with environment overrides. A missing
// file is not an error: defaults and the environment apply.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
