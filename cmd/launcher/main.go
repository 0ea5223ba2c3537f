package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/client/config"
	"github.com/dmitrijs2005/agentdesk/internal/client/launcher"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewTextLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	l := launcher.New(cfg, logger, os.Stdin, os.Stdout)
	if err := l.Run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}
