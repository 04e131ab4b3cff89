package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/mediagate/internal/client/cli"
	"github.com/dmitrijs2005/mediagate/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if cfg.CallerID == "" {
		log.Fatalf("caller id is required (-u or MEDIAGATE_CALLER_ID)")
	}

	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
