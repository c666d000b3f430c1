package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	// Empty disables the game archive.
	DBURL string

	WSSendBuffer     int
	WSWriteWait      time.Duration
	WSPongWait       time.Duration
	WSMaxMessageSize int64

	RoomIdleTTL      time.Duration
	RoomReapInterval time.Duration
	RecordTimeout    time.Duration
	ShutdownTimeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_URL", "")
	v.SetDefault("WS_SEND_BUFFER", 64)
	v.SetDefault("WS_WRITE_WAIT", "10s")
	v.SetDefault("WS_PONG_WAIT", "60s")
	v.SetDefault("WS_MAX_MESSAGE_SIZE", 4096)
	v.SetDefault("ROOM_IDLE_TTL", "10m")
	v.SetDefault("ROOM_REAP_INTERVAL", "1m")
	v.SetDefault("RECORD_TIMEOUT", "5s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetInt("PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DBURL:            v.GetString("DB_URL"),
		WSSendBuffer:     v.GetInt("WS_SEND_BUFFER"),
		WSWriteWait:      v.GetDuration("WS_WRITE_WAIT"),
		WSPongWait:       v.GetDuration("WS_PONG_WAIT"),
		WSMaxMessageSize: v.GetInt64("WS_MAX_MESSAGE_SIZE"),
		RoomIdleTTL:      v.GetDuration("ROOM_IDLE_TTL"),
		RoomReapInterval: v.GetDuration("ROOM_REAP_INTERVAL"),
		RecordTimeout:    v.GetDuration("RECORD_TIMEOUT"),
		ShutdownTimeout:  v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("config: WS_SEND_BUFFER must be positive: %d", c.WSSendBuffer)
	}
	if c.WSWriteWait <= 0 || c.WSPongWait <= 0 {
		return fmt.Errorf("config: WS_WRITE_WAIT and WS_PONG_WAIT must be positive")
	}
	if c.WSMaxMessageSize <= 0 {
		return fmt.Errorf("config: WS_MAX_MESSAGE_SIZE must be positive: %d", c.WSMaxMessageSize)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
