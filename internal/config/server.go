package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	NotifyWebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
	NotifyQueueSize  int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
