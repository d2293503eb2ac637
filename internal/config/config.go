package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ActionsConfig selects which builtin actions a reflection server registers
// and their options.
type ActionsConfig struct {
	Builtin       []string `toml:"builtin"`
	Greeting      string   `toml:"greeting"`
	CountdownFrom int      `toml:"countdown_from"`
}

// DefaultActionsConfig enables every builtin with default options.
func DefaultActionsConfig() ActionsConfig {
	return ActionsConfig{
		Builtin:       []string{"flow/greet", "util/echo", "flow/countdown"},
		Greeting:      "hi",
		CountdownFrom: 3,
	}
}

// LoadActionsConfig reads an actions manifest with defaults applied.
func LoadActionsConfig(path string) (ActionsConfig, error) {
	var cfg ActionsConfig
	if err := loadToml(path, &cfg); err != nil {
		return ActionsConfig{}, err
	}
	defaults := DefaultActionsConfig()
	if len(cfg.Builtin) == 0 {
		cfg.Builtin = defaults.Builtin
	}
	if cfg.Greeting == "" {
		cfg.Greeting = defaults.Greeting
	}
	if cfg.CountdownFrom == 0 {
		cfg.CountdownFrom = defaults.CountdownFrom
	}
	if err := ValidateActionsConfig(cfg); err != nil {
		return ActionsConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateActionsConfig(cfg ActionsConfig) error {
	for i, key := range cfg.Builtin {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("builtin[%d] is empty", i)
		}
		if !strings.Contains(key, "/") {
			return fmt.Errorf("builtin[%d] invalid key %q (expected <kind>/<name>)", i, key)
		}
	}
	if cfg.CountdownFrom < 0 {
		return fmt.Errorf("countdown_from must not be negative")
	}
	return nil
}
