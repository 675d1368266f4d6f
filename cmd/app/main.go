package main

import (
	"flag"
	"fmt"
	"os"

	"CPIReg/internal/di"
	"CPIReg/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	port := flag.Int("port", 0, "listen port (overrides config and CPIREG_PORT)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "app initialization failed: %v\n", err)
		os.Exit(1)
	}
	// Blocks until SIGINT/SIGTERM or a listener failure.
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "app error: %v\n", err)
		os.Exit(1)
	}
}
