package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProviders struct {
	tasks     []*Task
	resources []*Resource

	errTasks     error
	errResources error
}

func (s *stubProviders) LoadTasks(_ context.Context, _, _ int64, _ DayInterval) ([]*Task, error) {
	return s.tasks,
		s.errTasks
}

func (s *stubProviders) LoadResources(_ context.Context, _ int64) ([]*Resource, error) {
	return s.resources,
		s.errResources
}

func newTestService(t *testing.T, providers *stubProviders) *Service {
	t.Helper()

	pool := NewWorkerPool(
		&ParamsNewWorkerPool{Concurrency: 2},
	)
	t.Cleanup(pool.Shutdown)

	service, errNew := NewService(
		&ParamsNewService{
			TaskProvider:     providers,
			ResourceProvider: providers,
			Pool:             pool,
		},
	)
	require.NoError(t, errNew)

	return service
}

func TestNewServiceValidation(t *testing.T) {
	t.Run(
		"1. missing providers",
		func(t *testing.T) {
			service, errNew := NewService(
				&ParamsNewService{},
			)
			require.Error(t, errNew)
			require.Nil(t, service)
		},
	)

	t.Run(
		"2. missing pool",
		func(t *testing.T) {
			providers := stubProviders{}

			service, errNew := NewService(
				&ParamsNewService{
					TaskProvider:     &providers,
					ResourceProvider: &providers,
				},
			)
			require.Error(t, errNew)
			require.Nil(t, service)
		},
	)
}

func TestServiceComputeLoad(t *testing.T) {
	providers := stubProviders{
		tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 20, ResourceID: 1},
		},
		resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	service := newTestService(t, &providers)

	report, errLoad := service.ComputeLoad(
		context.Background(),
		&ParamsServiceWindow{
			ProjectID: 10,
			TeamID:    20,
			Window:    interval(0, 4),
		},
	)
	require.NoError(t, errLoad)

	require.Equal(t,
		50.0,
		report.PerResource[1].PeakUtilization,
	)
}

func TestServiceRecommendUsesDefaultThreshold(t *testing.T) {
	providers := stubProviders{
		tasks: []*Task{
			// 85% every day: over the default threshold of 80.
			{ID: 1, Interval: interval(0, 4), EffortHours: 34, ResourceID: 1, IsFixed: true},
		},
		resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	service := newTestService(t, &providers)

	recommendations, errRecommend := service.Recommend(
		context.Background(),
		&ParamsServiceRecommend{
			Window: interval(0, 4),
		},
	)
	require.NoError(t, errRecommend)
	require.Len(t, recommendations, 1)
	require.Equal(t,
		SeverityLow,
		recommendations[0].Severity,
	)
}

func TestServiceAutoDistribute(t *testing.T) {
	providers := stubProviders{
		tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 20},
			{ID: 2, Interval: interval(0, 4), EffortHours: 20, DependsOn: []TaskID{1}},
		},
		resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
			{ID: 2, DailyCapacity: 8},
		},
	}

	service := newTestService(t, &providers)

	plan, errDistribute := service.AutoDistribute(
		context.Background(),
		&ParamsServiceDistribute{
			Window: interval(0, 10),
		},
	)
	require.NoError(t, errDistribute)
	require.Len(t, plan.Assignments, 2)
}

func TestServicePredict(t *testing.T) {
	providers := stubProviders{
		tasks: []*Task{
			{ID: 1, Interval: interval(0, 4), EffortHours: 20, ResourceID: 1},
		},
		resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	service := newTestService(t, &providers)

	prediction, errPredict := service.PredictFutureLoad(
		context.Background(),
		&ParamsServicePredict{
			Window: interval(0, 4),
			NewTasks: []*Task{
				{ID: 100, Interval: interval(0, 4), EffortHours: 10, ResourceID: 1},
			},
		},
	)
	require.NoError(t, errPredict)

	require.Equal(t,
		50.0,
		prediction.Baseline.PerResource[1].PeakUtilization,
	)
	require.Equal(t,
		75.0,
		prediction.Projected.PerResource[1].PeakUtilization,
	)
}

func TestServiceProviderFailure(t *testing.T) {
	providers := stubProviders{
		errTasks: errors.New("storage offline"),
	}

	service := newTestService(t, &providers)

	report, errLoad := service.ComputeLoad(
		context.Background(),
		&ParamsServiceWindow{
			Window: interval(0, 4),
		},
	)
	require.Error(t, errLoad)
	require.Nil(t, report)
}

func TestServiceAfterPoolShutdown(t *testing.T) {
	providers := stubProviders{
		resources: []*Resource{
			{ID: 1, DailyCapacity: 8},
		},
	}

	pool := NewWorkerPool(
		&ParamsNewWorkerPool{Concurrency: 1},
	)

	service, errNew := NewService(
		&ParamsNewService{
			TaskProvider:     &providers,
			ResourceProvider: &providers,
			Pool:             pool,
		},
	)
	require.NoError(t, errNew)

	pool.Shutdown()

	report, errLoad := service.ComputeLoad(
		context.Background(),
		&ParamsServiceWindow{
			Window: interval(0, 4),
		},
	)
	require.ErrorIs(t, errLoad, ErrPoolShutdown)
	require.Nil(t, report)
}
