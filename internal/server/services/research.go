package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/completion"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/search"
	"github.com/dmitrijs2005/agentdesk/internal/server/templates"
)

// DefaultSearchResults is how many hits are fed to the model.
const DefaultSearchResults = 3

type ResearchResult struct {
	Query      string
	Answer     string
	Sources    []search.Result
	Record     *models.TaskRecord
	PersistErr error
}

// ResearchService answers questions from web search results.
type ResearchService struct {
	conv       *ConversationService
	renderer   Renderer
	searcher   search.Searcher
	llm        completion.Client
	opts       completion.Options
	maxResults int
	observer   PipelineObserver
	logger     logging.Logger
}

func NewResearchService(conv *ConversationService, renderer Renderer, searcher search.Searcher, llm completion.Client, opts completion.Options, maxResults int, observer PipelineObserver, logger logging.Logger) *ResearchService {
	if maxResults <= 0 {
		maxResults = DefaultSearchResults
	}
	return &ResearchService{
		conv:       conv,
		renderer:   renderer,
		searcher:   searcher,
		llm:        llm,
		opts:       opts,
		maxResults: maxResults,
		observer:   observer,
		logger:     logger.With("module", "research", "pipeline", PipelineResearch),
	}
}

// Ask searches the web for query and asks the model to answer from the hits.
func (s *ResearchService) Ask(ctx context.Context, query string) (*ResearchResult, error) {
	r := newRun(ctx, PipelineResearch, s.logger, s.observer)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, r.fail(ctx, validationErr("query is empty"))
	}
	r.reach(ctx, StageCollected)

	hits, err := s.searcher.Search(ctx, query, s.maxResults)
	if err != nil {
		return nil, r.fail(ctx, searchErr(err))
	}
	sources := search.FormatResults(hits)
	s.logger.Debug(ctx, "search done", "results", len(hits))

	prompt, err := s.renderer.Render(templates.Instructions, templates.ResearchAnswer, map[string]string{
		"results": sources,
		"query":   query,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.reach(ctx, StageRendered)

	answer, err := s.llm.Complete(ctx, prompt, s.opts)
	if err != nil {
		return nil, r.fail(ctx, completion.Classify(err))
	}
	answer = strings.TrimSpace(answer)
	r.reach(ctx, StageCompleted, "model", s.opts.Model)

	res := &ResearchResult{Query: query, Answer: answer, Sources: hits}

	rec, err := s.conv.SaveTask(ctx, models.KindResearch, query, map[string]string{
		models.FieldAnswer:  answer,
		models.FieldSources: sources,
	})
	if err != nil {
		r.warn(ctx, "research not stored", err)
	} else {
		res.Record = rec
		r.reach(ctx, StagePersisted, "record_id", rec.ID)
	}

	res.PersistErr = r.finish(ctx)
	return res, nil
}

// Recent returns the latest stored research answers.
func (s *ResearchService) Recent(ctx context.Context, limit int) ([]models.TaskRecord, error) {
	return s.conv.ListRecent(ctx, models.KindResearch, limit)
}

func searchErr(err error) error {
	if errors.Is(err, common.ErrService) || errors.Is(err, common.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: search: %v", common.ErrService, err)
}
