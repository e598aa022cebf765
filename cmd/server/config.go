package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=500"`
	BlockedSenders       []string      `env:"BLOCKED_SENDERS"`
	DuplicateWindow      time.Duration `env:"DUPLICATE_WINDOW,default=10s"`
	TelemetryInterval    time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`
}
