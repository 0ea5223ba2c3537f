package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/agentdesk/internal/client/config"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/bootstrap"
	sc "github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

type App struct {
	pipeline    string
	recentLimit int
	deps        *bootstrap.Deps
	logger      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	userName string
	// session is the chat drafts are appended to; empty starts a new one.
	session models.Session
	// chats is the last listing shown by "chats", addressed by "use N".
	chats []models.Session
}

// NewApp validates the pipeline and builds the services in-process.
func NewApp(ctx context.Context, c *config.Config, serverCfg *sc.Config) (*App, error) {
	pipeline := c.PipelineOrDefault()
	if err := config.ValidatePipeline(pipeline); err != nil {
		return nil, err
	}

	logger := logging.NewTextLogger(os.Stderr, logging.ParseLevel(c.LogLevel)).With("pipeline", pipeline)

	deps, err := bootstrap.New(ctx, serverCfg, logger)
	if err != nil {
		return nil, err
	}

	return newApp(pipeline, serverCfg.RecentLimit, deps, logger, os.Stdin, os.Stdout), nil
}

func newApp(pipeline string, recentLimit int, deps *bootstrap.Deps, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		pipeline:    pipeline,
		recentLimit: recentLimit,
		deps:        deps,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.deps.Close(context.Background()); err != nil {
			a.logger.Error(ctx, "closing store failed", "error", err)
		}
	}()

	printlnFn(fmt.Sprintf("agentdesk %s (type 'help' for commands)", a.pipeline))
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Pipeline() string { return a.pipeline }

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	s := a.pipeline
	if a.userName != "" {
		s += " " + a.userName
		if a.session.ID != "" {
			s += " [" + a.session.Title + "]"
		}
	}
	return s
}
