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

var emailOpts = completion.Options{Model: "gpt-3.5-turbo", Temperature: 0.7}

func validEmailRequest() EmailRequest {
	return EmailRequest{
		Username:  "alice",
		Intent:    "Follow-up",
		Recipient: "Bob",
		Purpose:   "the Q3 report",
		Tone:      "Friendly",
	}
}

func TestEmailService_Draft_EchoEndToEnd(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	obs := &recordingObserver{}
	svc := NewEmailService(conv, defaultTemplates(t), completion.EchoClient{}, emailOpts, obs, logging.Nop())

	res, err := svc.Draft(ctx, validEmailRequest())
	require.NoError(t, err)
	require.NoError(t, res.PersistErr)

	want := "Polish and improve this email draft while keeping the tone Friendly:\n\n" +
		"Hey Bob, just checking in on the Q3 report..."
	assert.Equal(t, want, res.Prompt)
	assert.Equal(t, want, res.Draft)
	assert.NotEmpty(t, res.SessionID)

	msgs, err := conv.Messages(ctx, "alice", res.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "recipient: Bob")
	assert.Equal(t, models.RoleAgent, msgs[1].Role)
	assert.Equal(t, res.Draft, msgs[1].Content)

	assert.Equal(t, observation{PipelineEmail, metrics.OutcomeOK}, obs.last())
}

func TestEmailService_Draft_ExistingSession(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	svc := NewEmailService(conv, defaultTemplates(t), completion.EchoClient{}, emailOpts, nil, logging.Nop())

	s, err := conv.CreateSession(ctx, "alice")
	require.NoError(t, err)

	req := validEmailRequest()
	req.SessionID = s.ID
	res, err := svc.Draft(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, s.ID, res.SessionID)

	req.Intent, req.Tone = "Meeting Request", "Formal"
	_, err = svc.Draft(ctx, req)
	require.NoError(t, err)

	msgs, err := conv.Messages(ctx, "alice", s.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestEmailService_Draft_ServiceErrorWritesNoAgentMessage(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	obs := &recordingObserver{}
	llm := &scriptedClient{err: errors.New("status code: 429, rate limit reached")}
	svc := NewEmailService(conv, defaultTemplates(t), llm, emailOpts, obs, logging.Nop())

	req := validEmailRequest()
	req.SessionID = "s-1"
	res, err := svc.Draft(ctx, req)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, common.ErrService)

	var se *completion.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, completion.KindRateLimit, se.Kind)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRendered, stageErr.Stage)

	msgs, err := conv.Messages(ctx, "alice", "s-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleUser, msgs[0].Role)

	assert.Equal(t, observation{PipelineEmail, metrics.OutcomeFailed}, obs.last())
}

func TestEmailService_Draft_Validation(t *testing.T) {
	conv, _, _ := newConv(t)
	llm := &scriptedClient{}
	svc := NewEmailService(conv, defaultTemplates(t), llm, emailOpts, nil, logging.Nop())

	req := validEmailRequest()
	req.Purpose = " "
	_, err := svc.Draft(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorContains(t, err, "purpose")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageInit, stageErr.Stage)
	assert.Empty(t, llm.prompts)
}

func TestEmailService_Draft_UnknownTemplate(t *testing.T) {
	conv, _, _ := newConv(t)
	llm := &scriptedClient{}
	svc := NewEmailService(conv, defaultTemplates(t), llm, emailOpts, nil, logging.Nop())

	req := validEmailRequest()
	req.Tone = "Sarcastic"
	_, err := svc.Draft(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrUnknownTemplate)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageCollected, stageErr.Stage)
	assert.Empty(t, llm.prompts)
}

func TestEmailService_Draft_ForeignSession(t *testing.T) {
	ctx := context.Background()
	conv, _, _ := newConv(t)
	llm := &scriptedClient{answers: []string{"draft"}}
	svc := NewEmailService(conv, defaultTemplates(t), llm, emailOpts, nil, logging.Nop())

	s, err := conv.CreateSession(ctx, "bob")
	require.NoError(t, err)

	req := validEmailRequest()
	req.SessionID = s.ID
	_, err = svc.Draft(ctx, req)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Empty(t, llm.prompts)
}

func TestEmailService_Draft_PersistWarning(t *testing.T) {
	ctx := context.Background()
	_, sr, tr := newConv(t)
	conv := NewConversationService(failingAgentAppend{Repository: sr, err: errors.New("db error: boom")}, tr, logging.Nop())
	obs := &recordingObserver{}
	llm := &scriptedClient{answers: []string{"Polished"}}
	svc := NewEmailService(conv, defaultTemplates(t), llm, emailOpts, obs, logging.Nop())

	res, err := svc.Draft(ctx, validEmailRequest())
	require.NoError(t, err)
	assert.Equal(t, "Polished", res.Draft)
	assert.ErrorIs(t, res.PersistErr, common.ErrStore)
	assert.Equal(t, []completion.Options{emailOpts}, llm.opts)
	assert.Equal(t, observation{PipelineEmail, metrics.OutcomePersistWarning}, obs.last())
}
