package optimizer

import (
	"context"

	goerrors "github.com/TudorHulban/go-errors"
)

// TaskProvider supplies the committed task snapshot. Implementations own
// persistence; the core only reads what they return.
type TaskProvider interface {
	LoadTasks(ctx context.Context, projectID, teamID int64, window DayInterval) ([]*Task, error)
}

type ResourceProvider interface {
	LoadResources(ctx context.Context, teamID int64) ([]*Resource, error)
}

// Service is the library boundary: it materializes snapshots through the
// injected providers and dispatches every computation through its worker
// pool so the request-handling layer stays responsive. No package-level
// state; each test builds a fresh service with a fresh pool.
type Service struct {
	tasks     TaskProvider
	resources ResourceProvider
	pool      *WorkerPool
	options   Options
}

type ParamsNewService struct {
	TaskProvider     TaskProvider
	ResourceProvider ResourceProvider
	Pool             *WorkerPool

	Options Options
}

func (params *ParamsNewService) IsValid() error {
	if params.TaskProvider == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewService",
			Issue: goerrors.ErrNilInput{
				InputName: "TaskProvider",
			},
		}
	}

	if params.ResourceProvider == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewService",
			Issue: goerrors.ErrNilInput{
				InputName: "ResourceProvider",
			},
		}
	}

	if params.Pool == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewService",
			Issue: goerrors.ErrNilInput{
				InputName: "Pool",
			},
		}
	}

	return nil
}

func NewService(params *ParamsNewService) (*Service, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	return &Service{
			tasks:     params.TaskProvider,
			resources: params.ResourceProvider,
			pool:      params.Pool,
			options:   params.Options.normalized(),
		},
		nil
}

func (svc *Service) snapshot(ctx context.Context, projectID, teamID int64, window DayInterval) (*Snapshot, error) {
	tasks, errTasks := svc.tasks.LoadTasks(ctx, projectID, teamID, window)
	if errTasks != nil {
		return nil,
			errTasks
	}

	resources, errResources := svc.resources.LoadResources(ctx, teamID)
	if errResources != nil {
		return nil,
			errResources
	}

	return NewSnapshot(
		&ParamsNewSnapshot{
			Tasks:     tasks,
			Resources: resources,
		},
	)
}

func (svc *Service) dispatch(ctx context.Context, kind JobKind, run func() (any, error)) (any, error) {
	future, errSubmit := svc.pool.Submit(kind, run)
	if errSubmit != nil {
		return nil,
			errSubmit
	}

	return future.Wait(ctx)
}

type ParamsServiceWindow struct {
	ProjectID int64
	TeamID    int64
	Window    DayInterval
}

func (svc *Service) ComputeLoad(ctx context.Context, params *ParamsServiceWindow) (*LoadReport, error) {
	snapshot, errSnapshot := svc.snapshot(ctx, params.ProjectID, params.TeamID, params.Window)
	if errSnapshot != nil {
		return nil,
			errSnapshot
	}

	value, errRun := svc.dispatch(
		ctx,
		JobComputeLoad,
		func() (any, error) {
			return ComputeLoad(
				&ParamsComputeLoad{
					Snapshot: snapshot,
					Window:   params.Window,
					Policy:   svc.options.EffortSpread,
				},
			)
		},
	)
	if errRun != nil {
		return nil,
			errRun
	}

	return value.(*LoadReport), nil
}

type ParamsServiceRecommend struct {
	ProjectID int64
	TeamID    int64
	Window    DayInterval

	// Threshold zero falls back to the service overload threshold.
	Threshold float64
}

func (svc *Service) Recommend(ctx context.Context, params *ParamsServiceRecommend) ([]*Recommendation, error) {
	snapshot, errSnapshot := svc.snapshot(ctx, params.ProjectID, params.TeamID, params.Window)
	if errSnapshot != nil {
		return nil,
			errSnapshot
	}

	threshold := ternary(
		params.Threshold > 0,

		params.Threshold,
		svc.options.OverloadThreshold,
	)

	value, errRun := svc.dispatch(
		ctx,
		JobRecommend,
		func() (any, error) {
			return Recommend(
				&ParamsRecommend{
					Snapshot:  snapshot,
					Window:    params.Window,
					Threshold: threshold,
					Policy:    svc.options.EffortSpread,
				},
			)
		},
	)
	if errRun != nil {
		return nil,
			errRun
	}

	return value.([]*Recommendation), nil
}

type ParamsServiceDistribute struct {
	ProjectID int64
	TeamID    int64
	Window    DayInterval

	FixedAssignments map[TaskID]ResourceID
}

func (svc *Service) AutoDistribute(ctx context.Context, params *ParamsServiceDistribute) (*DistributionPlan, error) {
	snapshot, errSnapshot := svc.snapshot(ctx, params.ProjectID, params.TeamID, params.Window)
	if errSnapshot != nil {
		return nil,
			errSnapshot
	}

	value, errRun := svc.dispatch(
		ctx,
		JobAutoDistribute,
		func() (any, error) {
			return AutoDistribute(
				&ParamsAutoDistribute{
					Snapshot:         snapshot,
					FixedAssignments: params.FixedAssignments,
				},
			)
		},
	)
	if errRun != nil {
		return nil,
			errRun
	}

	return value.(*DistributionPlan), nil
}

type ParamsServicePredict struct {
	ProjectID int64
	TeamID    int64
	Window    DayInterval

	NewTasks []*Task
}

func (svc *Service) PredictFutureLoad(ctx context.Context, params *ParamsServicePredict) (*Prediction, error) {
	snapshot, errSnapshot := svc.snapshot(ctx, params.ProjectID, params.TeamID, params.Window)
	if errSnapshot != nil {
		return nil,
			errSnapshot
	}

	value, errRun := svc.dispatch(
		ctx,
		JobPredictLoad,
		func() (any, error) {
			return PredictFutureLoad(
				&ParamsPredict{
					Snapshot: snapshot,
					Window:   params.Window,
					NewTasks: params.NewTasks,
					Policy:   svc.options.EffortSpread,
				},
			)
		},
	)
	if errRun != nil {
		return nil,
			errRun
	}

	return value.(*Prediction), nil
}
