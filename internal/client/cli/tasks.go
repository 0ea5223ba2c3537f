package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/client/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// Plan reads tasks and prints the breakdown, schedule and tips.
func (a *App) Plan(ctx context.Context) error {
	text, err := getMultiline(a.reader, "Your tasks", a.out)
	if err != nil {
		return report(err)
	}

	printlnFn("Generating plan...")
	res, err := a.deps.Planner.Plan(ctx, text)
	if err != nil {
		return report(err)
	}

	printlnFn("== Task Breakdown ==")
	printlnFn(res.Breakdown)
	printlnFn("== Schedule ==")
	printlnFn(res.Schedule)
	printlnFn("== Productivity Tips ==")
	printlnFn(res.Tips)
	warn(res.PersistErr)
	return nil
}

// Ask reads a question and prints the answer with its sources.
func (a *App) Ask(ctx context.Context) error {
	query, err := getSimpleText(a.reader, "Your question", a.out)
	if err != nil {
		return report(err)
	}

	printlnFn("Searching...")
	res, err := a.deps.Research.Ask(ctx, query)
	if err != nil {
		return report(err)
	}

	printlnFn(res.Answer)
	if len(res.Sources) > 0 {
		printlnFn("Sources:")
		for _, s := range res.Sources {
			printlnFn(fmt.Sprintf("  - %s: %s", s.Title, s.URL))
		}
	}
	warn(res.PersistErr)
	return nil
}

// Recent prints the latest records of the current pipeline.
func (a *App) Recent(ctx context.Context) error {
	kind := models.KindPlan
	if a.pipeline == config.PipelineResearch {
		kind = models.KindResearch
	}

	list, err := a.deps.Conversations.ListRecent(ctx, kind, a.recentLimit)
	if err != nil {
		return report(err)
	}
	if len(list) == 0 {
		printlnFn("Nothing yet.")
		return nil
	}

	for _, rec := range list {
		printlnFn(fmt.Sprintf("-- %s --", rec.CreatedAt.Local().Format("2006-01-02 15:04")))
		if kind == models.KindPlan {
			printlnFn("Input: " + rec.Input)
			printlnFn("Breakdown: " + rec.Fields[models.FieldBreakdown])
			printlnFn("Schedule: " + rec.Fields[models.FieldSchedule])
			printlnFn("Tips: " + rec.Fields[models.FieldTips])
		} else {
			printlnFn("Q: " + rec.Input)
			printlnFn("A: " + rec.Fields[models.FieldAnswer])
		}
	}
	return nil
}
