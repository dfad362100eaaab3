package optimizer

import (
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/TudorHulban/go-errors"
)

type PlannedTask struct {
	ResourceID ResourceID
	Interval   DayInterval
}

type UnplacedTask struct {
	TaskID TaskID
	Reason string
}

// DistributionPlan is a complete proposed assignment for every non-fixed
// task. Applying it (persisting new assignments) is the caller's
// responsibility.
type DistributionPlan struct {
	Assignments map[TaskID]PlannedTask

	Unplaced []UnplacedTask

	// MaxUtilization is the highest single-day utilization percentage any
	// resource reaches under the plan.
	MaxUtilization float64
}

func (plan *DistributionPlan) String() string {
	var sb strings.Builder

	sb.WriteString("DistributionPlan:\n")

	taskIDs := make([]TaskID, 0, len(plan.Assignments))

	for taskID := range plan.Assignments {
		taskIDs = append(taskIDs, taskID)
	}

	slices.Sort(taskIDs)

	for _, taskID := range taskIDs {
		placement := plan.Assignments[taskID]

		sb.WriteString(
			fmt.Sprintf(
				"- task %d -> resource %d %s\n",

				taskID,
				placement.ResourceID,
				placement.Interval,
			),
		)
	}

	sb.WriteString(
		fmt.Sprintf(
			"max utilization: %.2f%%, unplaced: %d",

			plan.MaxUtilization,
			len(plan.Unplaced),
		),
	)

	return sb.String()
}

type ParamsAutoDistribute struct {
	Snapshot *Snapshot

	// FixedAssignments pins tasks to resources in addition to tasks
	// already flagged IsFixed.
	FixedAssignments map[TaskID]ResourceID
}

func (params *ParamsAutoDistribute) IsValid() error {
	if params.Snapshot == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsAutoDistribute",
			Issue: goerrors.ErrNilInput{
				InputName: "Snapshot",
			},
		}
	}

	return nil
}

// AutoDistribute produces a dependency-respecting assignment and schedule
// for every non-fixed task, greedily minimizing peak overload. The plan is
// deterministic and never backtracks; it trades global optimality for
// tractable latency on large task sets. Worst case it degrades to a
// round-robin by resource ID when all resources stay equally loaded.
func AutoDistribute(params *ParamsAutoDistribute) (*DistributionPlan, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	snapshot := params.Snapshot

	for _, resource := range snapshot.Resources {
		if resource.DailyCapacity <= 0 {
			return nil,
				ErrInvalidResourceCapacity{
					ResourceID: resource.ID,
					Capacity:   resource.DailyCapacity,
				}
		}
	}

	graph := NewDependencyGraph(snapshot.Tasks)

	// Ordering proves acyclicity: a cycle aborts the whole call before any
	// placement happens.
	order, errOrder := graph.TopologicalOrder()
	if errOrder != nil {
		return nil,
			errOrder
	}

	state := distributionState{
		byTask:     snapshot.taskByID(),
		byResource: snapshot.resourceByID(),

		resourceIDs: snapshot.resourceIDsSorted(),

		hours:     make(map[ResourceID]map[Day]float64, len(snapshot.Resources)),
		finishDay: make(map[TaskID]Day, len(snapshot.Tasks)),
	}

	for _, resourceID := range state.resourceIDs {
		state.hours[resourceID] = make(map[Day]float64)
	}

	plan := DistributionPlan{
		Assignments: make(map[TaskID]PlannedTask),
		Unplaced:    make([]UnplacedTask, 0),
	}

	// Fixed tasks contribute load at their committed place and dates.
	for _, taskID := range order {
		task := state.byTask[taskID]

		pinnedTo, pinned := params.FixedAssignments[taskID]

		if !task.IsFixed && !pinned {
			continue
		}

		state.finishDay[taskID] = task.Interval.End

		resourceID := ternary(pinned, pinnedTo, task.ResourceID)
		if resourceID == 0 {
			continue
		}

		state.addLoad(resourceID, task.Interval, task.DailyHours())
	}

	for _, taskID := range order {
		task := state.byTask[taskID]

		if _, isFixed := state.finishDay[taskID]; isFixed {
			continue
		}

		interval := state.scheduleWindow(task, graph)

		resourceID, placeable := state.pickResource(task, interval)
		if !placeable {
			plan.Unplaced = append(
				plan.Unplaced,

				UnplacedTask{
					TaskID: taskID,
					Reason: fmt.Sprintf(
						"no resource provides required skills %v",
						task.RequiredSkills,
					),
				},
			)

			// Successors fall back to the original dates.
			state.finishDay[taskID] = task.Interval.End

			continue
		}

		state.addLoad(resourceID, interval, task.DailyHours())
		state.finishDay[taskID] = interval.End

		plan.Assignments[taskID] = PlannedTask{
			ResourceID: resourceID,
			Interval:   interval,
		}
	}

	plan.MaxUtilization = round2(state.maxUtilization())

	return &plan, nil
}

type distributionState struct {
	byTask     map[TaskID]*Task
	byResource map[ResourceID]*Resource

	resourceIDs []ResourceID

	hours     map[ResourceID]map[Day]float64
	finishDay map[TaskID]Day
}

func (state *distributionState) addLoad(resourceID ResourceID, interval DayInterval, hoursPerDay float64) {
	daily, exists := state.hours[resourceID]
	if !exists {
		return
	}

	for day := interval.Start; day <= interval.End; day++ {
		daily[day] += hoursPerDay
	}
}

// scheduleWindow shifts the task interval right until every already decided
// predecessor finishes before it starts, preserving duration.
func (state *distributionState) scheduleWindow(task *Task, graph *DependencyGraph) DayInterval {
	start := task.Interval.Start

	for _, predecessorID := range task.DependsOn {
		finish, decided := state.finishDay[predecessorID]
		if !decided {
			predecessor, exists := state.byTask[predecessorID]
			if !exists {
				continue
			}

			finish = predecessor.Interval.End
		}

		if boundary := finish + 1; boundary > start {
			start = boundary
		}
	}

	return DayInterval{
		Start: start,
		End:   start + Day(task.Interval.Days()) - 1,
	}
}

// pickResource chooses among skill-matching resources the one with the
// lowest resulting peak utilization, ties broken by lowest current average
// utilization, then lowest ID.
func (state *distributionState) pickResource(task *Task, interval DayInterval) (ResourceID, bool) {
	var (
		bestID      ResourceID
		bestPeak    float64
		bestAverage float64
		found       bool
	)

	for _, resourceID := range state.resourceIDs {
		resource := state.byResource[resourceID]

		if !resource.HasSkills(task.RequiredSkills) {
			continue
		}

		peak := state.peakWith(resourceID, interval, task.DailyHours())
		average := state.averageUtilization(resourceID)

		if !found ||
			peak < bestPeak ||
			(peak == bestPeak && average < bestAverage) {
			bestID = resourceID
			bestPeak = peak
			bestAverage = average
			found = true
		}
	}

	return bestID, found
}

func (state *distributionState) peakWith(resourceID ResourceID, interval DayInterval, hoursPerDay float64) float64 {
	resource := state.byResource[resourceID]
	daily := state.hours[resourceID]

	var peak float64

	for day, assigned := range daily {
		if interval.Contains(day) {
			assigned += hoursPerDay
		}

		utilization := assigned / resource.DailyCapacity * 100

		if utilization > peak {
			peak = utilization
		}
	}

	for day := interval.Start; day <= interval.End; day++ {
		if _, tracked := daily[day]; tracked {
			continue
		}

		utilization := hoursPerDay / resource.DailyCapacity * 100

		if utilization > peak {
			peak = utilization
		}
	}

	return peak
}

func (state *distributionState) averageUtilization(resourceID ResourceID) float64 {
	resource := state.byResource[resourceID]
	daily := state.hours[resourceID]

	if len(daily) == 0 {
		return 0
	}

	var total float64

	for _, assigned := range daily {
		total += assigned / resource.DailyCapacity * 100
	}

	return total / float64(len(daily))
}

func (state *distributionState) maxUtilization() float64 {
	var peak float64

	for _, resourceID := range state.resourceIDs {
		resource := state.byResource[resourceID]

		for _, assigned := range state.hours[resourceID] {
			utilization := assigned / resource.DailyCapacity * 100

			if utilization > peak {
				peak = utilization
			}
		}
	}

	return peak
}
