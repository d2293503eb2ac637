package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/reflectctl/internal/actions"
	"github.com/danmuck/reflectctl/internal/config"
	"github.com/danmuck/reflectctl/internal/observability"
	"github.com/danmuck/reflectctl/internal/reflection"
	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to reflectctl config.toml")
	initKind := flag.String("init-config", "", "write a template config (server|actions) to -config and exit")
	flag.Parse()

	observability.InitLogger("reflectctl")

	if *initKind != "" {
		if *configPath == "" {
			fmt.Fprintln(os.Stderr, "reflectctl: -init-config requires -config")
			os.Exit(2)
		}
		if err := config.WriteTemplate(*configPath, *initKind, false); err != nil {
			fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
			os.Exit(1)
		}
		return
	}

	svcCfg, actionsCfg, err := loadConfigs(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
		os.Exit(1)
	}

	reg := registry.NewRegistry()
	builtins, err := actions.Builtin(actionsCfg.Builtin, actions.Config{
		Greeting:      actionsCfg.Greeting,
		CountdownFrom: actionsCfg.CountdownFrom,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
		os.Exit(1)
	}
	for _, a := range builtins {
		if err := reg.Register(a); err != nil {
			fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
			os.Exit(1)
		}
	}
	log.Info().Int("actions", reg.Len()).Msg("registry_ready")

	shutdown := reflection.NewShutdownBroadcast()
	svc, err := reflection.NewService(svcCfg, reg, shutdown)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
		os.Exit(1)
	}
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "reflectctl: %v\n", err)
		os.Exit(1)
	}
}
