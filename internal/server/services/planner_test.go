package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/completion"
	"github.com/dmitrijs2005/agentdesk/internal/server/metrics"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

var plannerOpts = completion.Options{Model: "gpt-4o-mini", Temperature: 0.5}

func TestPlannerService_Plan_DependencyOrder(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	obs := &recordingObserver{}
	llm := &scriptedClient{answers: []string{"- BREAKDOWN", "9:00 SCHEDULE", "TIPS"}}
	svc := NewPlannerService(conv, defaultTemplates(t), llm, plannerOpts, obs, logging.Nop())

	res, err := svc.Plan(ctx, "write a blog post, do laundry")
	require.NoError(t, err)
	require.NoError(t, res.PersistErr)

	assert.Equal(t, "- BREAKDOWN", res.Breakdown)
	assert.Equal(t, "9:00 SCHEDULE", res.Schedule)
	assert.Equal(t, "TIPS", res.Tips)

	require.Len(t, llm.prompts, 3)
	assert.Equal(t, "Break down the following tasks into actionable subtasks:\nwrite a blog post, do laundry\nOutput in bullet points.", llm.prompts[0])
	assert.Equal(t, "Schedule the following tasks with time slots starting from 9:00 AM:\n- BREAKDOWN", llm.prompts[1])
	assert.Equal(t, "Suggest productivity tips and techniques for completing these tasks:\n- BREAKDOWN", llm.prompts[2])
	for _, o := range llm.opts {
		assert.Equal(t, plannerOpts, o)
	}

	require.NotNil(t, res.Record)
	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.KindPlan, recent[0].Kind)
	assert.Equal(t, "write a blog post, do laundry", recent[0].Input)
	assert.Equal(t, map[string]string{
		models.FieldBreakdown: "- BREAKDOWN",
		models.FieldSchedule:  "9:00 SCHEDULE",
		models.FieldTips:      "TIPS",
	}, recent[0].Fields)

	assert.Equal(t, observation{PipelinePlanner, metrics.OutcomeOK}, obs.last())
}

func TestPlannerService_Plan_NoIdempotence(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	svc := NewPlannerService(conv, defaultTemplates(t), completion.EchoClient{}, plannerOpts, nil, logging.Nop())

	_, err := svc.Plan(ctx, "same")
	require.NoError(t, err)
	_, err = svc.Plan(ctx, "same")
	require.NoError(t, err)

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestPlannerService_Plan_Blank(t *testing.T) {
	conv, _, _ := newConv(t)
	llm := &scriptedClient{}
	svc := NewPlannerService(conv, defaultTemplates(t), llm, plannerOpts, nil, logging.Nop())

	_, err := svc.Plan(context.Background(), "  \n")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, llm.prompts)
}

func TestPlannerService_Plan_ServiceErrorStops(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	obs := &recordingObserver{}
	llm := &scriptedClient{answers: []string{"only one"}}
	svc := NewPlannerService(conv, defaultTemplates(t), llm, plannerOpts, obs, logging.Nop())

	_, err := svc.Plan(ctx, "tasks")
	assert.ErrorIs(t, err, common.ErrService)
	assert.Len(t, llm.prompts, 2)

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.Equal(t, observation{PipelinePlanner, metrics.OutcomeFailed}, obs.last())
}

func TestPlannerService_Plan_PersistWarning(t *testing.T) {
	_, sr, tr := newConv(t)
	conv := NewConversationService(sr, failingTasks{Repository: tr, err: errors.New("db error: connection refused")}, logging.Nop())
	obs := &recordingObserver{}
	svc := NewPlannerService(conv, defaultTemplates(t), completion.EchoClient{}, plannerOpts, obs, logging.Nop())

	res, err := svc.Plan(context.Background(), "tasks")
	require.NoError(t, err)
	assert.Nil(t, res.Record)
	assert.ErrorIs(t, res.PersistErr, common.ErrStoreUnavailable)
	assert.NotEmpty(t, res.Tips)
	assert.Equal(t, observation{PipelinePlanner, metrics.OutcomePersistWarning}, obs.last())
}
