// Package bootstrap builds the service graph from a validated Config. The
// HTTP server and the terminal front-end share it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/completion"
	"github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/metrics"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/agentdesk/internal/server/search"
	"github.com/dmitrijs2005/agentdesk/internal/server/services"
	"github.com/dmitrijs2005/agentdesk/internal/server/templates"
)

// Deps holds every long-lived collaborator. Close releases the store.
type Deps struct {
	Repos     repomanager.RepositoryManager
	Metrics   *metrics.Metrics
	Templates *templates.Store

	Auth          *services.AuthService
	Conversations *services.ConversationService
	Email         *services.EmailService
	Planner       *services.PlannerService
	Research      *services.ResearchService
	Export        *services.ExportService
}

var openRepositories = repomanager.New

// New opens the store, runs migrations and wires the services.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := templates.Load(cfg.TemplatesFile)
	if err != nil {
		return nil, err
	}

	llm, err := newCompletionClient(cfg)
	if err != nil {
		return nil, err
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations: %w", err)
	}

	m := metrics.New()
	instrumented := completion.Instrumented{Next: llm, Recorder: m}
	searcher := search.NewDuckDuckGo(cfg.SearchEndpoint)

	conv := services.NewConversationService(repos.Sessions(), repos.Tasks(), logger)

	d := &Deps{
		Repos:         repos,
		Metrics:       m,
		Templates:     store,
		Auth:          services.NewAuthService(repos.Users(), logger),
		Conversations: conv,
		Email: services.NewEmailService(conv, store, instrumented,
			completion.Options{Model: cfg.EmailModel, Temperature: cfg.EmailTemperature}, m, logger),
		Planner: services.NewPlannerService(conv, store, instrumented,
			completion.Options{Model: cfg.PlannerModel, Temperature: cfg.PlannerTemperature}, m, logger),
		Research: services.NewResearchService(conv, store, searcher, instrumented,
			completion.Options{Model: cfg.ResearchModel, Temperature: cfg.ResearchTemperature}, cfg.SearchResults, m, logger),
		Export: services.NewExportService(conv, cfg, logger),
	}

	logger.Info(ctx, "dependencies ready",
		"storage", cfg.StorageBackend,
		"mock_llm", cfg.UseMockLLM,
		"export", cfg.ExportEnabled())
	return d, nil
}

func newCompletionClient(cfg *config.Config) (completion.Client, error) {
	if cfg.UseMockLLM {
		return completion.EchoClient{}, nil
	}
	c, err := completion.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: openai client: %v", common.ErrConfiguration, err)
	}
	return c, nil
}

// Close releases the store connection.
func (d *Deps) Close(ctx context.Context) error {
	if d == nil || d.Repos == nil {
		return nil
	}
	return d.Repos.Close(ctx)
}
