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
	"github.com/dmitrijs2005/agentdesk/internal/server/templates"
)

// Renderer fills a named template. *templates.Store implements it.
type Renderer interface {
	Render(category, variant string, fields map[string]string) (string, error)
}

// EmailRequest is the collected email form. Intent selects the template
// category and Tone its variant.
type EmailRequest struct {
	Username  string
	SessionID string
	Intent    string
	Recipient string
	Purpose   string
	Tone      string
}

// Summary is the form as it is stored in the chat.
func (r EmailRequest) Summary() string {
	return fmt.Sprintf("intent: %s; recipient: %s; purpose: %s; tone: %s",
		r.Intent, r.Recipient, r.Purpose, r.Tone)
}

func (r EmailRequest) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"username", r.Username},
		{"intent", r.Intent},
		{"recipient", r.Recipient},
		{"purpose", r.Purpose},
		{"tone", r.Tone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return validationErr("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// EmailResult is a finished draft. PersistErr is non-nil when the draft was
// produced but could not be fully recorded in the session.
type EmailResult struct {
	SessionID  string
	Prompt     string
	Draft      string
	PersistErr error
}

// EmailService turns a collected form into a polished email draft and keeps
// both sides of the exchange in the user's chat session.
type EmailService struct {
	conv     *ConversationService
	renderer Renderer
	llm      completion.Client
	opts     completion.Options
	observer PipelineObserver
	logger   logging.Logger
}

func NewEmailService(conv *ConversationService, renderer Renderer, llm completion.Client, opts completion.Options, observer PipelineObserver, logger logging.Logger) *EmailService {
	return &EmailService{
		conv:     conv,
		renderer: renderer,
		llm:      llm,
		opts:     opts,
		observer: observer,
		logger:   logger.With("module", "email", "pipeline", PipelineEmail),
	}
}

// Draft runs the email pipeline. An empty req.SessionID starts a new session.
func (s *EmailService) Draft(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	r := newRun(ctx, PipelineEmail, s.logger, s.observer)

	if err := req.validate(); err != nil {
		return nil, r.fail(ctx, err)
	}
	if req.SessionID == "" {
		req.SessionID = s.conv.newID()
	}
	r.reach(ctx, StageCollected, "username", req.Username, "session_id", req.SessionID)

	if _, err := s.conv.AppendMessage(ctx, req.Username, req.SessionID, models.RoleUser, req.Summary()); err != nil {
		if fatalAppend(err) {
			return nil, r.fail(ctx, err)
		}
		r.warn(ctx, "user message not stored", err)
	}

	filled, err := s.renderer.Render(req.Intent, req.Tone, map[string]string{
		"recipient": req.Recipient,
		"purpose":   req.Purpose,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	prompt, err := s.renderer.Render(templates.Instructions, templates.PolishEmail, map[string]string{
		"tone":  req.Tone,
		"draft": filled,
	})
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	r.reach(ctx, StageRendered)

	draft, err := s.llm.Complete(ctx, prompt, s.opts)
	if err != nil {
		return nil, r.fail(ctx, completion.Classify(err))
	}
	r.reach(ctx, StageCompleted, "model", s.opts.Model)

	res := &EmailResult{SessionID: req.SessionID, Prompt: prompt, Draft: draft}
	if _, err := s.conv.AppendMessage(ctx, req.Username, req.SessionID, models.RoleAgent, draft); err != nil {
		r.warn(ctx, "agent message not stored", err)
	} else {
		r.reach(ctx, StagePersisted)
	}

	res.PersistErr = r.finish(ctx)
	return res, nil
}

// fatalAppend reports append failures that must stop the pipeline: writing to
// a session the user does not own, or a request the store refused as invalid.
func fatalAppend(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrValidation)
}
