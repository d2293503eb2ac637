package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "server":
		return serverTemplate, nil
	case "actions":
		return actionsTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serverTemplate = `name = "reflectctl"
addr = "127.0.0.1:3100"
version = "1.0.0"
encoding = "utf-8"
legacy_stream_content_type = false
actions_config_path = "actions.toml"
`

const actionsTemplate = `builtin = ["flow/greet", "util/echo", "flow/countdown"]
greeting = "hi"
countdown_from = 3
`
