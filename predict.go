package optimizer

import (
	"fmt"
	"slices"

	goerrors "github.com/TudorHulban/go-errors"
)

// Prediction pairs the committed-only series with the projected one so
// callers can diff them.
type Prediction struct {
	Baseline  *LoadReport
	Projected *LoadReport

	// Warnings carry informational dependency findings for hypothetical
	// tasks. Never fatal: predictions may explore infeasible-today
	// scenarios on purpose.
	Warnings []string
}

type ParamsPredict struct {
	Snapshot *Snapshot
	Window   DayInterval
	NewTasks []*Task
	Policy   EffortSpreadPolicy
}

func (params *ParamsPredict) IsValid() error {
	if params.Snapshot == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsPredict",
			Issue: goerrors.ErrNilInput{
				InputName: "Snapshot",
			},
		}
	}

	return nil
}

// PredictFutureLoad replays the load computation over committed plus
// hypothetical tasks without mutating committed state. With no new tasks the
// projected report equals the baseline exactly.
func PredictFutureLoad(params *ParamsPredict) (*Prediction, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	baseline, errBaseline := ComputeLoad(
		&ParamsComputeLoad{
			Snapshot: params.Snapshot,
			Window:   params.Window,
			Policy:   params.Policy,
		},
	)
	if errBaseline != nil {
		return nil,
			errBaseline
	}

	merged := Snapshot{
		Tasks:     append(slices.Clone(params.Snapshot.Tasks), params.NewTasks...),
		Resources: params.Snapshot.Resources,
	}

	projected, errProjected := ComputeLoad(
		&ParamsComputeLoad{
			Snapshot: &merged,
			Window:   params.Window,
			Policy:   params.Policy,
		},
	)
	if errProjected != nil {
		return nil,
			errProjected
	}

	warnings := make([]string, 0)
	graph := NewDependencyGraph(merged.Tasks)

	for _, task := range params.NewTasks {
		if len(task.DependsOn) == 0 {
			continue
		}

		if check := graph.ValidateMove(task.ID, task.Interval); !check.Valid {
			warnings = append(
				warnings,

				fmt.Sprintf(
					"hypothetical task %d: %s",

					task.ID,
					check.Reason,
				),
			)
		}
	}

	return &Prediction{
			Baseline:  baseline,
			Projected: projected,
			Warnings:  warnings,
		},
		nil
}
