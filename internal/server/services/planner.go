package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/completion"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/templates"
)

// planStep is one model call of the planner. Its template receives a single
// field, Param, filled from the output named by From ("" means the user input).
type planStep struct {
	Field    string
	Template string
	Param    string
	From     string
}

// planSteps run in order. Schedule and tips both depend on the breakdown only.
var planSteps = []planStep{
	{Field: models.FieldBreakdown, Template: templates.TaskBreakdown, Param: "tasks"},
	{Field: models.FieldSchedule, Template: templates.Schedule, Param: "breakdown", From: models.FieldBreakdown},
	{Field: models.FieldTips, Template: templates.ProductivityTips, Param: "breakdown", From: models.FieldBreakdown},
}

// PlanResult holds the three planner outputs. Record is nil when the plan
// could not be stored, in which case PersistErr says why.
type PlanResult struct {
	Input      string
	Breakdown  string
	Schedule   string
	Tips       string
	Record     *models.TaskRecord
	PersistErr error
}

// PlannerService breaks free-text tasks down, schedules them and suggests
// productivity tips.
type PlannerService struct {
	conv     *ConversationService
	renderer Renderer
	llm      completion.Client
	opts     completion.Options
	observer PipelineObserver
	logger   logging.Logger
}

func NewPlannerService(conv *ConversationService, renderer Renderer, llm completion.Client, opts completion.Options, observer PipelineObserver, logger logging.Logger) *PlannerService {
	return &PlannerService{
		conv:     conv,
		renderer: renderer,
		llm:      llm,
		opts:     opts,
		observer: observer,
		logger:   logger.With("module", "planner", "pipeline", PipelinePlanner),
	}
}

// Plan runs the three planner calls sequentially and records the plan.
func (s *PlannerService) Plan(ctx context.Context, text string) (*PlanResult, error) {
	r := newRun(ctx, PipelinePlanner, s.logger, s.observer)

	if strings.TrimSpace(text) == "" {
		return nil, r.fail(ctx, validationErr("tasks are empty"))
	}
	r.reach(ctx, StageCollected)

	outputs := make(map[string]string, len(planSteps))
	for _, step := range planSteps {
		value := text
		if step.From != "" {
			value = outputs[step.From]
		}

		prompt, err := s.renderer.Render(templates.Instructions, step.Template, map[string]string{step.Param: value})
		if err != nil {
			return nil, r.fail(ctx, err)
		}
		r.reach(ctx, StageRendered, "step", step.Field)

		out, err := s.llm.Complete(ctx, prompt, s.opts)
		if err != nil {
			return nil, r.fail(ctx, completion.Classify(err))
		}
		outputs[step.Field] = out
	}
	r.reach(ctx, StageCompleted, "model", s.opts.Model)

	res := &PlanResult{
		Input:     text,
		Breakdown: outputs[models.FieldBreakdown],
		Schedule:  outputs[models.FieldSchedule],
		Tips:      outputs[models.FieldTips],
	}

	rec, err := s.conv.SaveTask(ctx, models.KindPlan, text, outputs)
	if err != nil {
		r.warn(ctx, "plan not stored", err)
	} else {
		res.Record = rec
		r.reach(ctx, StagePersisted, "record_id", rec.ID)
	}

	res.PersistErr = r.finish(ctx)
	return res, nil
}

// Recent returns the latest stored plans.
func (s *PlannerService) Recent(ctx context.Context, limit int) ([]models.TaskRecord, error) {
	return s.conv.ListRecent(ctx, models.KindPlan, limit)
}
