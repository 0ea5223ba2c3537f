package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/completion"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/agentdesk/internal/server/search"
	"github.com/dmitrijs2005/agentdesk/internal/server/templates"
)

func newConv(t *testing.T) (*ConversationService, *sessions.MemoryRepository, *tasks.MemoryRepository) {
	t.Helper()
	sr := sessions.NewMemoryRepository()
	tr := tasks.NewMemoryRepository()
	return NewConversationService(sr, tr, logging.Nop()), sr, tr
}

func defaultTemplates(t *testing.T) *templates.Store {
	t.Helper()
	store, err := templates.Default()
	require.NoError(t, err)
	return store
}

// scriptedClient returns canned answers in order and records the prompts.
type scriptedClient struct {
	mu      sync.Mutex
	answers []string
	err     error
	prompts []string
	opts    []completion.Options
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string, opts completion.Options) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	c.opts = append(c.opts, opts)
	if c.err != nil {
		return "", c.err
	}
	if len(c.answers) == 0 {
		return "", errors.New("no scripted answer left")
	}
	out := c.answers[0]
	c.answers = c.answers[1:]
	return out, nil
}

type observation struct {
	pipeline string
	outcome  string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObservePipeline(pipeline, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{pipeline, outcome})
}

func (o *recordingObserver) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.seen) == 0 {
		return observation{}
	}
	return o.seen[len(o.seen)-1]
}

// failingSessions fails every Append with err.
type failingSessions struct {
	sessions.Repository
	err error
}

func (f failingSessions) Append(context.Context, *models.Session, *models.Message) (*models.Session, error) {
	return nil, f.err
}

// failingAgentAppend stores user messages and fails agent messages.
type failingAgentAppend struct {
	sessions.Repository
	err error
}

func (f failingAgentAppend) Append(ctx context.Context, s *models.Session, m *models.Message) (*models.Session, error) {
	if m.Role == models.RoleAgent {
		return nil, f.err
	}
	return f.Repository.Append(ctx, s, m)
}

type failingTasks struct {
	tasks.Repository
	err error
}

func (f failingTasks) Insert(context.Context, *models.TaskRecord) error { return f.err }

type fakeSearcher struct {
	results  []search.Result
	err      error
	gotQuery string
	gotMax   int
}

func (f *fakeSearcher) Search(_ context.Context, query string, max int) ([]search.Result, error) {
	f.gotQuery = query
	f.gotMax = max
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > max {
		return f.results[:max], nil
	}
	return f.results, nil
}
