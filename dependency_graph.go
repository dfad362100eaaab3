package optimizer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/addrummond/heap"
)

const _LinkTypeFinishToStart = "finish-to-start"

// DependencyGraph interprets task DependsOn sets as a directed graph of
// finish-to-start edges. It only reads the snapshot it was built from;
// unknown task IDs are ignored defensively.
type DependencyGraph struct {
	tasks      map[TaskID]*Task
	dependents map[TaskID][]TaskID

	orderedIDs []TaskID
}

func NewDependencyGraph(tasks []*Task) *DependencyGraph {
	graph := DependencyGraph{
		tasks:      make(map[TaskID]*Task, len(tasks)),
		dependents: make(map[TaskID][]TaskID),
		orderedIDs: make([]TaskID, 0, len(tasks)),
	}

	for _, task := range tasks {
		graph.tasks[task.ID] = task
		graph.orderedIDs = append(graph.orderedIDs, task.ID)
	}

	slices.Sort(graph.orderedIDs)

	for _, task := range tasks {
		for _, predecessorID := range task.DependsOn {
			if _, exists := graph.tasks[predecessorID]; !exists {
				continue
			}

			graph.dependents[predecessorID] = append(
				graph.dependents[predecessorID],
				task.ID,
			)
		}
	}

	for _, ids := range graph.dependents {
		slices.Sort(ids)
	}

	return &graph
}

type MoveCheck struct {
	Reason string

	ConflictTaskID TaskID
	Boundary       Day

	Valid bool
}

// ValidateMove checks a hypothetical new interval for the task against its
// predecessors and dependents. The first violation found wins; a task with no
// dependencies is always a valid move target.
func (graph *DependencyGraph) ValidateMove(taskID TaskID, newInterval DayInterval) *MoveCheck {
	task, exists := graph.tasks[taskID]
	if !exists {
		return &MoveCheck{Valid: true}
	}

	for _, predecessorID := range task.DependsOn {
		predecessor, existsPredecessor := graph.tasks[predecessorID]
		if !existsPredecessor {
			continue
		}

		if predecessor.Interval.End > newInterval.Start {
			return &MoveCheck{
				Reason: fmt.Sprintf(
					"task %d cannot start on %s: dependency %q (task %d) finishes on %s, earliest allowed start is %s",

					taskID,
					newInterval.Start,
					predecessor.Name,
					predecessor.ID,
					predecessor.Interval.End,
					predecessor.Interval.End,
				),

				ConflictTaskID: predecessor.ID,
				Boundary:       predecessor.Interval.End,
			}
		}
	}

	for _, dependentID := range graph.dependents[taskID] {
		dependent, existsDependent := graph.tasks[dependentID]
		if !existsDependent {
			continue
		}

		if newInterval.End > dependent.Interval.Start {
			return &MoveCheck{
				Reason: fmt.Sprintf(
					"task %d cannot end on %s: dependent %q (task %d) starts on %s, latest allowed end is %s",

					taskID,
					newInterval.End,
					dependent.Name,
					dependent.ID,
					dependent.Interval.Start,
					dependent.Interval.Start,
				),

				ConflictTaskID: dependent.ID,
				Boundary:       dependent.Interval.Start,
			}
		}
	}

	return &MoveCheck{Valid: true}
}

type LinkCheck struct {
	// AdjustedTarget is set when accepting the link requires pushing the
	// target so the source can finish first. Duration is preserved.
	AdjustedTarget *DayInterval
}

// ValidateLink checks adding a finish-to-start edge source -> target.
// Self-links and links that would close a cycle are rejected.
func (graph *DependencyGraph) ValidateLink(sourceID, targetID TaskID) (*LinkCheck, error) {
	if sourceID == targetID {
		return nil,
			ErrDependencyViolation{
				TaskID:         targetID,
				ConflictTaskID: sourceID,
				Issue: fmt.Sprintf(
					"task %d cannot depend on itself",
					sourceID,
				),
			}
	}

	source, existsSource := graph.tasks[sourceID]
	target, existsTarget := graph.tasks[targetID]

	if !existsSource || !existsTarget {
		return &LinkCheck{}, nil
	}

	if graph.dependsOnTransitively(sourceID, targetID) {
		return nil,
			ErrDependencyViolation{
				TaskID:         targetID,
				ConflictTaskID: sourceID,
				Issue: fmt.Sprintf(
					"linking task %d after task %d would create a dependency cycle",

					targetID,
					sourceID,
				),
			}
	}

	if source.Interval.End > target.Interval.Start {
		adjusted := DayInterval{
			Start: source.Interval.End + 1,
			End:   source.Interval.End + Day(target.Interval.Days()),
		}

		return &LinkCheck{
				AdjustedTarget: &adjusted,
			},
			nil
	}

	return &LinkCheck{}, nil
}

// dependsOnTransitively reports whether ancestorID is reachable from taskID
// by following DependsOn edges.
func (graph *DependencyGraph) dependsOnTransitively(taskID, ancestorID TaskID) bool {
	visited := make(map[TaskID]struct{})
	stack := []TaskID{taskID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}

		visited[current] = struct{}{}

		task, exists := graph.tasks[current]
		if !exists {
			continue
		}

		for _, predecessorID := range task.DependsOn {
			if predecessorID == ancestorID {
				return true
			}

			stack = append(stack, predecessorID)
		}
	}

	return false
}

type DependencyLink struct {
	ID     string
	Source TaskID
	Target TaskID
	Type   string
}

// Links projects the edge set for consumers such as Gantt views. Not
// authoritative for validation. Ordered by source then target.
func (graph *DependencyGraph) Links() []DependencyLink {
	result := make([]DependencyLink, 0)

	for _, taskID := range graph.orderedIDs {
		task := graph.tasks[taskID]

		predecessorIDs := slices.Clone(task.DependsOn)
		slices.Sort(predecessorIDs)

		for _, predecessorID := range predecessorIDs {
			if _, exists := graph.tasks[predecessorID]; !exists {
				continue
			}

			result = append(
				result,

				DependencyLink{
					ID:     fmt.Sprintf("%d-%d", predecessorID, taskID),
					Source: predecessorID,
					Target: taskID,
					Type:   _LinkTypeFinishToStart,
				},
			)
		}
	}

	slices.SortFunc(
		result,
		func(a, b DependencyLink) int {
			if a.Source != b.Source {
				return cmp.Compare(a.Source, b.Source)
			}

			return cmp.Compare(a.Target, b.Target)
		},
	)

	return result
}

// EarliestStart returns the first day the task may start so every known
// predecessor finishes strictly before it.
func (graph *DependencyGraph) EarliestStart(taskID TaskID) (Day, bool) {
	task, exists := graph.tasks[taskID]
	if !exists {
		return 0, false
	}

	earliest := task.Interval.Start

	for _, predecessorID := range task.DependsOn {
		predecessor, existsPredecessor := graph.tasks[predecessorID]
		if !existsPredecessor {
			continue
		}

		if boundary := predecessor.Interval.End + 1; boundary > earliest {
			earliest = boundary
		}
	}

	return earliest, true
}

type readyTask struct {
	id       TaskID
	priority Priority
}

// Higher priority pops first, ties broken by lowest ID.
func (a *readyTask) Cmp(b *readyTask) int {
	if a.priority != b.priority {
		return cmp.Compare(b.priority, a.priority)
	}

	return cmp.Compare(a.id, b.id)
}

// TopologicalOrder returns every task ID in a dependency-respecting order.
// The ready set is drained priority descending then ID ascending, which also
// fixes the Distributor placement order. A cycle aborts with
// ErrCyclicDependency naming the offending task IDs.
func (graph *DependencyGraph) TopologicalOrder() ([]TaskID, error) {
	indegree := make(map[TaskID]int, len(graph.tasks))

	for _, taskID := range graph.orderedIDs {
		task := graph.tasks[taskID]

		for _, predecessorID := range task.DependsOn {
			if _, exists := graph.tasks[predecessorID]; !exists {
				continue
			}

			indegree[taskID]++
		}
	}

	var ready heap.Heap[readyTask, heap.Min]

	for _, taskID := range graph.orderedIDs {
		if indegree[taskID] == 0 {
			heap.PushOrderable(
				&ready,
				readyTask{
					id:       taskID,
					priority: graph.tasks[taskID].Priority,
				},
			)
		}
	}

	result := make([]TaskID, 0, len(graph.tasks))

	for {
		next, ok := heap.PopOrderable(&ready)
		if !ok {
			break
		}

		result = append(result, next.id)

		for _, dependentID := range graph.dependents[next.id] {
			indegree[dependentID]--

			if indegree[dependentID] == 0 {
				heap.PushOrderable(
					&ready,
					readyTask{
						id:       dependentID,
						priority: graph.tasks[dependentID].Priority,
					},
				)
			}
		}
	}

	if len(result) < len(graph.tasks) {
		return nil,
			ErrCyclicDependency{
				Cycle: graph.findCycle(indegree),
			}
	}

	return result, nil
}

// findCycle walks DependsOn edges among the nodes Kahn's algorithm could not
// drain until one repeats, then trims the walk to the cycle itself.
func (graph *DependencyGraph) findCycle(indegree map[TaskID]int) []TaskID {
	remaining := make(map[TaskID]struct{})

	for _, taskID := range graph.orderedIDs {
		if indegree[taskID] > 0 {
			remaining[taskID] = struct{}{}
		}
	}

	var start TaskID

	for _, taskID := range graph.orderedIDs {
		if _, exists := remaining[taskID]; exists {
			start = taskID

			break
		}
	}

	walk := []TaskID{}
	position := make(map[TaskID]int)
	current := start

	for {
		if at, seen := position[current]; seen {
			return walk[at:]
		}

		position[current] = len(walk)
		walk = append(walk, current)

		task := graph.tasks[current]

		for _, predecessorID := range task.DependsOn {
			if _, exists := remaining[predecessorID]; exists {
				current = predecessorID

				break
			}
		}
	}
}
