package main

import (
	"github.com/kelseyhightower/envconfig"
)

// DisplayConfig holds the terminal rendering settings.
type DisplayConfig struct {
	// DEMO_COLOURS enables colorized output
	Colours bool `envconfig:"DEMO_COLOURS" default:"true"`
	// DEMO_WIDTH truncates previews and message lines, in runes
	Width int `envconfig:"DEMO_WIDTH" default:"48"`
}

func LoadDisplayConfig() (DisplayConfig, error) {
	var cfg DisplayConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}
