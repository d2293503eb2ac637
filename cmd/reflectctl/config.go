package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/reflectctl/internal/config"
	"github.com/danmuck/reflectctl/internal/reflection"
)

// reflectctl config.toml key mapping to server runtime settings.
type fileConfig struct {
	Name                    string `toml:"name"`
	Addr                    string `toml:"addr"`
	Version                 string `toml:"version"`
	Encoding                string `toml:"encoding"`
	LegacyStreamContentType bool   `toml:"legacy_stream_content_type"`
	ActionsConfigPath       string `toml:"actions_config_path"`
}

// loadConfigs overlays TOML config on runtime defaults. The actions manifest
// path is resolved relative to the service config file.
func loadConfigs(path string) (reflection.ServiceConfig, config.ActionsConfig, error) {
	svcCfg := reflection.DefaultServiceConfig()
	actionsCfg := config.DefaultActionsConfig()
	if strings.TrimSpace(path) == "" {
		return svcCfg, actionsCfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return reflection.ServiceConfig{}, config.ActionsConfig{}, fmt.Errorf("load reflectctl config: %w", err)
	}

	if meta.IsDefined("name") {
		svcCfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		svcCfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("version") {
		svcCfg.Version = strings.TrimSpace(raw.Version)
	}
	if meta.IsDefined("encoding") {
		svcCfg.Encoding = strings.TrimSpace(raw.Encoding)
	}
	if meta.IsDefined("legacy_stream_content_type") {
		svcCfg.LegacyStreamContentType = raw.LegacyStreamContentType
	}
	if meta.IsDefined("actions_config_path") {
		svcCfg.ActionsConfigPath = strings.TrimSpace(raw.ActionsConfigPath)
	}

	if svcCfg.ListenAddr == "" {
		return reflection.ServiceConfig{}, config.ActionsConfig{}, fmt.Errorf("load reflectctl config: addr must not be empty")
	}

	if svcCfg.ActionsConfigPath != "" {
		resolved := svcCfg.ActionsConfigPath
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(path), resolved)
		}
		actionsCfg, err = config.LoadActionsConfig(resolved)
		if err != nil {
			return reflection.ServiceConfig{}, config.ActionsConfig{}, err
		}
	}
	return svcCfg, actionsCfg, nil
}
