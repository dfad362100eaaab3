package optimizer

import "slices"

type TaskID int64

type Priority uint8

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Task is a read-only snapshot of one unit of work. The core never mutates a
// task in place; every computation returns freshly built result objects.
type Task struct {
	Name           string
	RequiredSkills []string
	DependsOn      []TaskID

	Interval    DayInterval
	EffortHours float64

	ID         TaskID
	ResourceID ResourceID // zero means unassigned
	Priority   Priority
	IsFixed    bool
}

func (t *Task) IsAssigned() bool {
	return t.ResourceID != 0
}

// DailyHours spreads the task effort uniformly across its calendar days.
func (t *Task) DailyHours() float64 {
	days := t.Interval.Days()
	if days == 0 || t.EffortHours <= 0 {
		return 0
	}

	return t.EffortHours / float64(days)
}

func (t *Task) Clone() *Task {
	clone := *t

	clone.RequiredSkills = slices.Clone(t.RequiredSkills)
	clone.DependsOn = slices.Clone(t.DependsOn)

	return &clone
}
