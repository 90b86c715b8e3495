package main

import (
	"fmt"
	"os"

	"github.com/matheus3301/mqchat/internal/config"
	"github.com/matheus3301/mqchat/internal/daemon"
	"github.com/matheus3301/mqchat/internal/session"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
)

func main() {
	identityFlag := flag.StringP("identity", "i", "", "local participant id (overrides config)")
	configFlag := flag.StringP("config", "c", session.ConfigPath(), "path to config.toml")
	loopbackFlag := flag.Bool("loopback", false, "route traffic in-process instead of through the broker")
	flag.Parse()

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	identity, err := session.Resolve(*identityFlag, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.NopLogger,
		daemon.Module(daemon.Params{
			Identity: identity,
			Config:   cfg,
			Loopback: *loopbackFlag,
		}),
	)

	app.Run()
}
