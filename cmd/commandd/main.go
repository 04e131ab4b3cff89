package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/mediagate/internal/logging"
	"github.com/dmitrijs2005/mediagate/internal/server"
	"github.com/dmitrijs2005/mediagate/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel).With("process", "commandd")

	app, err := server.NewApp(ctx, cfg, logger)

	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	if err := app.RunCommands(ctx); err != nil {
		_ = app.Close()
		log.Fatalf("%v", err)
	}

}
