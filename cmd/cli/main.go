package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/agentdesk/internal/client/cli"
	"github.com/dmitrijs2005/agentdesk/internal/client/config"
	sc "github.com/dmitrijs2005/agentdesk/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadCLIConfig()
	serverCfg := sc.LoadConfig()

	app, err := cli.NewApp(ctx, cfg, serverCfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
