package optimizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAutoDistributeRespectsDependencies(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 20, Priority: PriorityHigh},
			{ID: 2, Interval: interval(0, 2), EffortHours: 9, DependsOn: []TaskID{1}},
			{ID: 3, Interval: interval(0, 3), EffortHours: 12, DependsOn: []TaskID{1, 2}},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
			{ID: 2, DailyCapacity: 8},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{
			Snapshot: &snapshot,
		},
	)
	require.NoError(t, errDistribute)
	require.Len(t, plan.Assignments, 3)
	require.Empty(t, plan.Unplaced)

	for _, task := range snapshot.Tasks {
		placed := plan.Assignments[task.ID]

		require.Equal(t,
			task.Interval.Days(),
			placed.Interval.Days(),
			"duration preserved for task %d", task.ID,
		)

		for _, predecessorID := range task.DependsOn {
			predecessor := plan.Assignments[predecessorID]

			require.LessOrEqual(t,
				predecessor.Interval.End,
				placed.Interval.Start,
				"task %d must start after task %d finishes", task.ID, predecessorID,
			)
		}
	}
}

func TestAutoDistributeCycleAbortsWholeCall(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 2), DependsOn: []TaskID{2}, EffortHours: 8},
			{ID: 2, Interval: interval(0, 2), DependsOn: []TaskID{1}, EffortHours: 8},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{
			Snapshot: &snapshot,
		},
	)
	require.Error(t, errDistribute)
	require.Nil(t, plan)

	var cyclic ErrCyclicDependency
	require.ErrorAs(t, errDistribute, &cyclic)
	require.ElementsMatch(t,
		[]TaskID{1, 2},
		cyclic.Cycle,
	)
}

func TestAutoDistributeSkillMatching(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 20, RequiredSkills: []string{"go"}},
			{ID: 2, Interval: interval(0, 4), EffortHours: 20, RequiredSkills: []string{"cobol"}},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8, Skills: []string{"go", "sql"}},
			{ID: 2, DailyCapacity: 8, Skills: []string{"design"}},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{
			Snapshot: &snapshot,
		},
	)
	require.NoError(t, errDistribute)

	require.Len(t, plan.Assignments, 1)
	require.Equal(t,
		ResourceID(1),
		plan.Assignments[1].ResourceID,
	)

	require.Len(t, plan.Unplaced, 1)
	require.Equal(t,
		TaskID(2),
		plan.Unplaced[0].TaskID,
	)
	require.Contains(t,
		plan.Unplaced[0].Reason,
		"cobol",
	)
}

func TestAutoDistributeFixedTasksStay(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			// Fixed on resource 1, loading it fully.
			{ID: 1, Interval: interval(0, 4), EffortHours: 40, ResourceID: 1, IsFixed: true},
			{ID: 2, Interval: interval(0, 4), EffortHours: 20},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
			{ID: 2, DailyCapacity: 8},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{
			Snapshot: &snapshot,
		},
	)
	require.NoError(t, errDistribute)

	_, fixedPlanned := plan.Assignments[1]
	require.False(t, fixedPlanned, "fixed tasks are never replanned")

	// The free task lands on the idle resource.
	require.Equal(t,
		ResourceID(2),
		plan.Assignments[2].ResourceID,
	)
}

func TestAutoDistributePinnedAssignments(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 40, ResourceID: 1},
			{ID: 2, Interval: interval(0, 4), EffortHours: 20},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
			{ID: 2, DailyCapacity: 8},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{
			Snapshot: &snapshot,
			FixedAssignments: map[TaskID]ResourceID{
				1: 2,
			},
		},
	)
	require.NoError(t, errDistribute)

	_, pinnedPlanned := plan.Assignments[1]
	require.False(t, pinnedPlanned)

	// Pinning task 1 onto resource 2 pushes the free task to resource 1.
	require.Equal(t,
		ResourceID(1),
		plan.Assignments[2].ResourceID,
	)
}

func TestAutoDistributeDeterminism(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 3), EffortHours: 16},
			{ID: 2, Interval: interval(0, 3), EffortHours: 16},
			{ID: 3, Interval: interval(0, 3), EffortHours: 16},
			{ID: 4, Interval: interval(0, 3), EffortHours: 16},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
			{ID: 2, DailyCapacity: 8},
		},
	}

	first, errFirst := AutoDistribute(
		&ParamsAutoDistribute{Snapshot: &snapshot},
	)
	require.NoError(t, errFirst)

	second, errSecond := AutoDistribute(
		&ParamsAutoDistribute{Snapshot: &snapshot},
	)
	require.NoError(t, errSecond)

	require.Equal(t, first, second)
}

func TestAutoDistributeMaxUtilization(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 30},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{Snapshot: &snapshot},
	)
	require.NoError(t, errDistribute)

	require.Equal(t,
		75.0,
		plan.MaxUtilization,
	)
}

func TestAutoDistributeZeroCapacity(t *testing.T) {
	snapshot := Snapshot{
		Tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 30},
		},
		Resources: []*Resource{
			{ID: 1, DailyCapacity: -2},
		},
	}

	plan, errDistribute := AutoDistribute(
		&ParamsAutoDistribute{Snapshot: &snapshot},
	)
	require.Error(t, errDistribute)
	require.Nil(t, plan)

	var capacityIssue ErrInvalidResourceCapacity
	require.ErrorAs(t, errDistribute, &capacityIssue)
}

// Property: whatever acyclic dependency structure comes in, the plan never
// violates a finish-to-start edge.
func TestAutoDistributeDependencySafety(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		taskCount := rapid.IntRange(1, 12).Draw(t, "taskCount")

		tasks := make([]*Task, 0, taskCount)

		for i := 1; i <= taskCount; i++ {
			var dependsOn []TaskID

			// Depending only on lower IDs keeps the graph acyclic.
			for j := 1; j < i; j++ {
				if rapid.Bool().Draw(t, fmt.Sprintf("edge-%d-%d", j, i)) {
					dependsOn = append(dependsOn, TaskID(j))
				}
			}

			start := Day(rapid.IntRange(0, 20).Draw(t, fmt.Sprintf("start-%d", i)))
			duration := rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("duration-%d", i))

			tasks = append(
				tasks,

				&Task{
					ID:          TaskID(i),
					Interval:    interval(start, start+Day(duration)-1),
					EffortHours: float64(rapid.IntRange(1, 40).Draw(t, fmt.Sprintf("effort-%d", i))),
					Priority:    Priority(rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("priority-%d", i))),
					DependsOn:   dependsOn,
				},
			)
		}

		resourceCount := rapid.IntRange(1, 4).Draw(t, "resourceCount")
		resources := make([]*Resource, 0, resourceCount)

		for i := 1; i <= resourceCount; i++ {
			resources = append(
				resources,

				&Resource{
					ID:            ResourceID(i),
					DailyCapacity: float64(rapid.IntRange(4, 10).Draw(t, fmt.Sprintf("capacity-%d", i))),
				},
			)
		}

		plan, errDistribute := AutoDistribute(
			&ParamsAutoDistribute{
				Snapshot: &Snapshot{
					Tasks:     tasks,
					Resources: resources,
				},
			},
		)
		if errDistribute != nil {
			t.Fatalf("acyclic input must distribute: %v", errDistribute)
		}

		if len(plan.Assignments) != taskCount {
			t.Fatalf("expected %d placements, got %d", taskCount, len(plan.Assignments))
		}

		for _, task := range tasks {
			placed := plan.Assignments[task.ID]

			for _, predecessorID := range task.DependsOn {
				predecessor := plan.Assignments[predecessorID]

				if predecessor.Interval.End > placed.Interval.Start {
					t.Fatalf(
						"task %d starts %s before dependency %d ends %s",
						task.ID, placed.Interval.Start, predecessorID, predecessor.Interval.End,
					)
				}
			}
		}
	})
}
