package models

import "time"

// TaskKind separates planner output from research answers.
type TaskKind string

const (
	KindPlan     TaskKind = "plan"
	KindResearch TaskKind = "research"
)

// Valid reports whether k is one of the known kinds.
func (k TaskKind) Valid() bool {
	return k == KindPlan || k == KindResearch
}

// Field names stored in TaskRecord.Fields.
const (
	FieldBreakdown = "breakdown"
	FieldSchedule  = "schedule"
	FieldTips      = "tips"
	FieldAnswer    = "answer"
	FieldSources   = "sources"
)

// TaskRecord is the immutable result of one planner or research run.
type TaskRecord struct {
	ID        string
	Kind      TaskKind
	Input     string
	Fields    map[string]string
	CreatedAt time.Time
}
