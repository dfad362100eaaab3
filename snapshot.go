package optimizer

import (
	"fmt"
	"slices"

	goerrors "github.com/TudorHulban/go-errors"
)

// Snapshot is the immutable task and resource state one optimization call
// operates on. Providers materialize it, the core only reads it.
type Snapshot struct {
	Tasks     []*Task
	Resources []*Resource
}

type ParamsNewSnapshot struct {
	Tasks     []*Task
	Resources []*Resource
}

func (params *ParamsNewSnapshot) IsValid() error {
	seenTasks := make(map[TaskID]struct{}, len(params.Tasks))

	for _, task := range params.Tasks {
		if task == nil {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewSnapshot",
				Issue: goerrors.ErrNilInput{
					InputName: "Tasks",
				},
			}
		}

		if _, exists := seenTasks[task.ID]; exists {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewSnapshot",
				Issue: fmt.Errorf(
					"duplicate task ID %d",
					task.ID,
				),
			}
		}

		seenTasks[task.ID] = struct{}{}
	}

	seenResources := make(map[ResourceID]struct{}, len(params.Resources))

	for _, resource := range params.Resources {
		if resource == nil {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewSnapshot",
				Issue: goerrors.ErrNilInput{
					InputName: "Resources",
				},
			}
		}

		if _, exists := seenResources[resource.ID]; exists {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewSnapshot",
				Issue: fmt.Errorf(
					"duplicate resource ID %d",
					resource.ID,
				),
			}
		}

		seenResources[resource.ID] = struct{}{}
	}

	return nil
}

func NewSnapshot(params *ParamsNewSnapshot) (*Snapshot, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	return &Snapshot{
			Tasks:     params.Tasks,
			Resources: params.Resources,
		},
		nil
}

func (s *Snapshot) taskByID() map[TaskID]*Task {
	result := make(map[TaskID]*Task, len(s.Tasks))

	for _, task := range s.Tasks {
		result[task.ID] = task
	}

	return result
}

func (s *Snapshot) resourceByID() map[ResourceID]*Resource {
	result := make(map[ResourceID]*Resource, len(s.Resources))

	for _, resource := range s.Resources {
		result[resource.ID] = resource
	}

	return result
}

func (s *Snapshot) resourceIDsSorted() []ResourceID {
	result := make([]ResourceID, 0, len(s.Resources))

	for _, resource := range s.Resources {
		result = append(result, resource.ID)
	}

	slices.Sort(result)

	return result
}
