// Command web serves the epicli HTTP API and websocket notifications.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"epicli/internal/app"
	"epicli/internal/config"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (default: $EPI_CONFIG_FILE or ./epicli.yaml)")
	preload := flag.String("load", "", "data file to load at startup, relative to the data directory (\"latest\" picks the newest)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.New(cfg, app.Options{Preload: *preload})
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		application.Logger.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
