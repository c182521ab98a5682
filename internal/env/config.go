package env

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/luma/topicsender/transport"
)

type Config struct {
	ConnectTimeout    time.Duration `env:"TOPIC_CONNECT_TIMEOUT,default=5s"`
	SendTimeout       time.Duration `env:"TOPIC_SEND_TIMEOUT,default=5s"`
	ReceiveTimeout    time.Duration `env:"TOPIC_RECEIVE_TIMEOUT,default=5s"`
	DisconnectTimeout time.Duration `env:"TOPIC_DISCONNECT_TIMEOUT,default=5s"`

	LogLevel  string `env:"TOPIC_LOG_LEVEL,default=info"`
	Trace     bool   `env:"TOPIC_TRACE"`
	DebugHTTP bool   `env:"TOPIC_DEBUG_HTTP"`
}

// LoadConfig reads .env.local when it exists, then the process environment.
func LoadConfig(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("Failed to load .env.local: %w", err)
	}

	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	config := Config{}

	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Timeouts() transport.Timeouts {
	return transport.Timeouts{
		Connect:    c.ConnectTimeout,
		Send:       c.SendTimeout,
		Receive:    c.ReceiveTimeout,
		Disconnect: c.DisconnectTimeout,
	}
}
