package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_SERVER_URL points the suite at an already-running relay
	// (ws://host:port/chat). Empty means an in-process server is started.
	ServerURL string `envconfig:"CHAT_SERVER_URL"`
	// E2E_DEBUG_FRAMES dumps every frame sent and received
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
