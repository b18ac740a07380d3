package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/cangjie/parser"
)

const configFile = "cj.toml"

// config holds the settings read from cj.toml in the working directory.
// Missing file means defaults; a present but malformed file is an error.
type config struct {
	MaxIndentDepth int    `toml:"max_indent_depth"`
	Format         string `toml:"format"`
}

func loadConfig() (*config, error) {
	cfg := &config{
		MaxIndentDepth: parser.DefaultMaxIndentDepth,
		Format:         "json",
	}
	if _, err := os.Stat(configFile); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(configFile, cfg); err != nil {
		return nil, fmt.Errorf("load %s: %w", configFile, err)
	}
	if cfg.MaxIndentDepth <= 0 {
		return nil, fmt.Errorf("load %s: max_indent_depth must be positive", configFile)
	}
	return cfg, nil
}
