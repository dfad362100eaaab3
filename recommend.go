package optimizer

import (
	"cmp"
	"fmt"
	"slices"

	goerrors "github.com/TudorHulban/go-errors"
)

type Severity uint8

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

type ActionKind string

const (
	ActionReassign   = ActionKind("reassign")
	ActionReschedule = ActionKind("reschedule")
	ActionShare      = ActionKind("share")
)

// Action is a closed set of suggestion variants. Consumers switch on the
// concrete type; Kind exists for serialization boundaries.
type Action interface {
	Kind() ActionKind
}

type Reassign struct {
	TaskID TaskID
	From   ResourceID
	To     ResourceID
}

func (Reassign) Kind() ActionKind { return ActionReassign }

type Reschedule struct {
	TaskID      TaskID
	NewInterval DayInterval
}

func (Reschedule) Kind() ActionKind { return ActionReschedule }

type Share struct {
	TaskID TaskID
	From   ResourceID
	To     ResourceID

	// SplitPercentage is the share of the task effort moved to To,
	// clamped to [0, 100].
	SplitPercentage float64
}

func (Share) Kind() ActionKind { return ActionShare }

type Recommendation struct {
	ID string

	ResourceID      ResourceID
	Severity        Severity
	PeakUtilization float64

	// SuggestedActions may be empty when no feasible action exists - the
	// overloaded resource is still reported.
	SuggestedActions []Action
}

type ParamsRecommend struct {
	Snapshot  *Snapshot
	Window    DayInterval
	Threshold float64 // zero means DefaultOverloadThreshold
	Policy    EffortSpreadPolicy
}

func (params *ParamsRecommend) IsValid() error {
	if params.Snapshot == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsRecommend",
			Issue: goerrors.ErrNilInput{
				InputName: "Snapshot",
			},
		}
	}

	if params.Threshold < 0 {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsRecommend",
			Issue: goerrors.ErrNegativeInput{
				InputName: "Threshold",
			},
		}
	}

	return nil
}

func classifySeverity(peak float64) Severity {
	switch {
	case peak >= 110:
		return SeverityHigh
	case peak >= 95:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Recommend classifies overloaded resources over the window and synthesizes
// candidate actions for each, ordered severity descending then resource ID
// ascending.
func Recommend(params *ParamsRecommend) ([]*Recommendation, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	threshold := ternary(
		params.Threshold > 0,

		params.Threshold,
		DefaultOverloadThreshold,
	)

	report, errLoad := ComputeLoad(
		&ParamsComputeLoad{
			Snapshot: params.Snapshot,
			Window:   params.Window,
			Policy:   params.Policy,
		},
	)
	if errLoad != nil {
		return nil,
			errLoad
	}

	engine := recommendationState{
		snapshot:  params.Snapshot,
		window:    params.Window,
		threshold: threshold,
		report:    report,
		graph:     NewDependencyGraph(params.Snapshot.Tasks),
		byID:      params.Snapshot.resourceByID(),
	}

	result := make([]*Recommendation, 0)

	for _, resourceID := range params.Snapshot.resourceIDsSorted() {
		load := report.PerResource[resourceID]

		if load.PeakUtilization < threshold {
			continue
		}

		result = append(
			result,

			&Recommendation{
				ID: fmt.Sprintf("reco-%d", resourceID),

				ResourceID:      resourceID,
				Severity:        classifySeverity(load.PeakUtilization),
				PeakUtilization: load.PeakUtilization,

				SuggestedActions: engine.actionsFor(resourceID),
			},
		)
	}

	slices.SortStableFunc(
		result,
		func(a, b *Recommendation) int {
			if a.Severity != b.Severity {
				return cmp.Compare(b.Severity, a.Severity)
			}

			return cmp.Compare(a.ResourceID, b.ResourceID)
		},
	)

	return result, nil
}

type recommendationState struct {
	snapshot  *Snapshot
	window    DayInterval
	threshold float64
	report    *LoadReport
	graph     *DependencyGraph
	byID      map[ResourceID]*Resource
}

// movableTasksOf lists non-fixed tasks of the resource overlapping the
// window, smallest effort first so the least disruptive move is tried first.
func (state *recommendationState) movableTasksOf(resourceID ResourceID) []*Task {
	result := make([]*Task, 0)

	for _, task := range state.snapshot.Tasks {
		if task.ResourceID != resourceID || task.IsFixed {
			continue
		}

		if !task.Interval.Overlaps(state.window) {
			continue
		}

		result = append(result, task)
	}

	slices.SortFunc(
		result,
		func(a, b *Task) int {
			if a.EffortHours != b.EffortHours {
				return cmp.Compare(a.EffortHours, b.EffortHours)
			}

			return cmp.Compare(a.ID, b.ID)
		},
	)

	return result
}

func (state *recommendationState) hoursSeries(resourceID ResourceID) []float64 {
	load := state.report.PerResource[resourceID]

	result := make([]float64, len(load.Daily))

	for ix, sample := range load.Daily {
		result[ix] = sample.HoursAssigned
	}

	return result
}

func contributionOn(task *Task, day Day) float64 {
	if !task.Interval.Contains(day) {
		return 0
	}

	return task.DailyHours()
}

// peakWithout recomputes the resource peak utilization with the task removed.
func (state *recommendationState) peakWithout(resourceID ResourceID, task *Task) float64 {
	capacity := state.byID[resourceID].DailyCapacity
	hours := state.hoursSeries(resourceID)

	var peak float64

	for ix, assigned := range hours {
		day := state.window.Start + Day(ix)

		utilization := (assigned - contributionOn(task, day)) / capacity * 100

		if utilization > peak {
			peak = utilization
		}
	}

	return peak
}

// reassignTargetFor picks the skill-compatible resource whose utilization
// stays under the threshold after absorbing the task, minimizing the
// resulting peak; ties go to the lowest ID.
func (state *recommendationState) reassignTargetFor(task *Task, from ResourceID) (ResourceID, bool) {
	var (
		bestID   ResourceID
		bestPeak float64
		found    bool
	)

	for _, resourceID := range state.snapshot.resourceIDsSorted() {
		if resourceID == from {
			continue
		}

		candidate := state.byID[resourceID]
		if !candidate.HasSkills(task.RequiredSkills) {
			continue
		}

		resultingPeak := state.peakWith(resourceID, task, task.Interval)
		if resultingPeak >= state.threshold {
			continue
		}

		if !found || resultingPeak < bestPeak {
			bestID = resourceID
			bestPeak = resultingPeak
			found = true
		}
	}

	return bestID, found
}

// peakWith computes the peak utilization of the resource over the window with
// the task hypothetically occupying the given interval.
func (state *recommendationState) peakWith(resourceID ResourceID, task *Task, interval DayInterval) float64 {
	capacity := state.byID[resourceID].DailyCapacity
	hours := state.hoursSeries(resourceID)
	hoursPerDay := task.DailyHours()

	var peak float64

	for ix, assigned := range hours {
		day := state.window.Start + Day(ix)

		if interval.Contains(day) {
			assigned += hoursPerDay
		}

		utilization := assigned / capacity * 100

		if utilization > peak {
			peak = utilization
		}
	}

	return peak
}

// rescheduleWindowFor scans start days across the window for the earliest
// dependency-valid interval that brings the resource peak under the
// threshold after the move.
func (state *recommendationState) rescheduleWindowFor(task *Task, resourceID ResourceID) (DayInterval, bool) {
	capacity := state.byID[resourceID].DailyCapacity
	hours := state.hoursSeries(resourceID)
	hoursPerDay := task.DailyHours()
	duration := task.Interval.Days()

	for start := state.window.Start; start <= state.window.End; start++ {
		candidate := DayInterval{
			Start: start,
			End:   start + Day(duration) - 1,
		}

		if candidate == task.Interval {
			continue
		}

		if check := state.graph.ValidateMove(task.ID, candidate); !check.Valid {
			continue
		}

		var peak float64

		for ix, assigned := range hours {
			day := state.window.Start + Day(ix)

			assigned -= contributionOn(task, day)

			if candidate.Contains(day) {
				assigned += hoursPerDay
			}

			utilization := assigned / capacity * 100

			if utilization > peak {
				peak = utilization
			}
		}

		if peak < state.threshold {
			return candidate, true
		}
	}

	return DayInterval{}, false
}

// shareFor splits the task effort between the overloaded resource and the
// least loaded skill-compatible one. The split percentage equalizes the two
// post-split peaks: solve over.util - p*share = target.util + p*share.
func (state *recommendationState) shareFor(task *Task, from ResourceID) (*Share, bool) {
	var (
		bestID   ResourceID
		bestPeak float64
		found    bool
	)

	for _, resourceID := range state.snapshot.resourceIDsSorted() {
		if resourceID == from {
			continue
		}

		candidate := state.byID[resourceID]
		if !candidate.HasSkills(task.RequiredSkills) {
			continue
		}

		peak := state.report.PerResource[resourceID].PeakUtilization

		if !found || peak < bestPeak {
			bestID = resourceID
			bestPeak = peak
			found = true
		}
	}

	if !found {
		return nil, false
	}

	source := state.byID[from]
	taskShare := task.DailyHours() / source.DailyCapacity * 100

	if taskShare == 0 {
		return nil, false
	}

	sourcePeak := state.report.PerResource[from].PeakUtilization

	split := (sourcePeak - bestPeak) / (2 * taskShare) * 100

	split = max(split, 0)
	split = min(split, 100)

	return &Share{
			TaskID: task.ID,
			From:   from,
			To:     bestID,

			SplitPercentage: round2(split),
		},
		true
}

func (state *recommendationState) actionsFor(resourceID ResourceID) []Action {
	result := make([]Action, 0)

	candidates := state.movableTasksOf(resourceID)
	if len(candidates) == 0 {
		return result
	}

	// Reassign the smallest-effort task whose removal resolves the
	// overload, when a target with headroom exists.
	for _, task := range candidates {
		if state.peakWithout(resourceID, task) >= state.threshold {
			continue
		}

		target, exists := state.reassignTargetFor(task, resourceID)
		if !exists {
			continue
		}

		result = append(
			result,

			Reassign{
				TaskID: task.ID,
				From:   resourceID,
				To:     target,
			},
		)

		return result
	}

	// No reassignment target anywhere: shift a task to the earliest span
	// with headroom instead.
	for _, task := range candidates {
		newInterval, exists := state.rescheduleWindowFor(task, resourceID)
		if !exists {
			continue
		}

		result = append(
			result,

			Reschedule{
				TaskID:      task.ID,
				NewInterval: newInterval,
			},
		)

		return result
	}

	// Neither fully resolves: split effort with a secondary resource.
	for _, task := range candidates {
		share, exists := state.shareFor(task, resourceID)
		if !exists {
			continue
		}

		result = append(result, *share)

		return result
	}

	return result
}
