package optimizer

import (
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/TudorHulban/go-errors"
)

type LoadSample struct {
	Day           Day
	HoursAssigned float64
	Utilization   float64 // percent, rounded to two decimals
}

type ResourceLoad struct {
	Daily []LoadSample

	PeakUtilization    float64
	AverageUtilization float64

	ResourceID ResourceID
}

type LoadReport struct {
	Window      DayInterval
	PerResource map[ResourceID]*ResourceLoad

	// Unassigned holds IDs of tasks that contribute zero load because no
	// resource owns them, sorted ascending.
	Unassigned []TaskID
}

func (report *LoadReport) String() string {
	var sb strings.Builder

	sb.WriteString(
		fmt.Sprintf(
			"LoadReport %s:\n",
			report.Window,
		),
	)

	resourceIDs := make([]ResourceID, 0, len(report.PerResource))

	for resourceID := range report.PerResource {
		resourceIDs = append(resourceIDs, resourceID)
	}

	slices.Sort(resourceIDs)

	for _, resourceID := range resourceIDs {
		load := report.PerResource[resourceID]

		sb.WriteString(
			fmt.Sprintf(
				"- resource %d: peak %.2f%%, average %.2f%%\n",

				resourceID,
				load.PeakUtilization,
				load.AverageUtilization,
			),
		)
	}

	sb.WriteString(
		fmt.Sprintf(
			"unassigned backlog: %d task(s)",
			len(report.Unassigned),
		),
	)

	return sb.String()
}

type ParamsComputeLoad struct {
	Snapshot *Snapshot
	Window   DayInterval
	Policy   EffortSpreadPolicy
}

func (params *ParamsComputeLoad) IsValid() error {
	if params.Snapshot == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsComputeLoad",
			Issue: goerrors.ErrNilInput{
				InputName: "Snapshot",
			},
		}
	}

	if !params.Window.IsValid() {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsComputeLoad",
			Issue: goerrors.ErrInvalidInput{
				InputName: "Window",
			},
		}
	}

	if len(params.Policy) > 0 && params.Policy != EffortSpreadUniform {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsComputeLoad",
			Issue: goerrors.ErrInvalidInput{
				InputName:  "Policy",
				InputValue: params.Policy,
			},
		}
	}

	return nil
}

// ComputeLoad derives per-resource daily utilization over the window from the
// snapshot assignments. Pure: identical snapshots yield identical reports.
func ComputeLoad(params *ParamsComputeLoad) (*LoadReport, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	snapshot := params.Snapshot
	window := params.Window
	windowDays := window.Days()

	perResource := make(map[ResourceID]*ResourceLoad, len(snapshot.Resources))
	hours := make(map[ResourceID][]float64, len(snapshot.Resources))

	for _, resource := range snapshot.Resources {
		if resource.DailyCapacity <= 0 {
			return nil,
				ErrInvalidResourceCapacity{
					ResourceID: resource.ID,
					Capacity:   resource.DailyCapacity,
				}
		}

		hours[resource.ID] = make([]float64, windowDays)
	}

	unassigned := make([]TaskID, 0)

	for _, task := range snapshot.Tasks {
		if !task.IsAssigned() {
			unassigned = append(unassigned, task.ID)

			continue
		}

		daily, exists := hours[task.ResourceID]
		if !exists {
			// Unknown resource reference: contributes nothing.
			continue
		}

		overlap, overlaps := task.Interval.Intersect(window)
		if !overlaps {
			continue
		}

		hoursPerDay := task.DailyHours()

		for day := overlap.Start; day <= overlap.End; day++ {
			daily[day-window.Start] += hoursPerDay
		}
	}

	for _, resource := range snapshot.Resources {
		daily := hours[resource.ID]

		load := ResourceLoad{
			Daily:      make([]LoadSample, windowDays),
			ResourceID: resource.ID,
		}

		var peak, total float64

		for ix, assigned := range daily {
			utilization := assigned / resource.DailyCapacity * 100

			if utilization > peak {
				peak = utilization
			}

			total += utilization

			load.Daily[ix] = LoadSample{
				Day:           window.Start + Day(ix),
				HoursAssigned: assigned,
				Utilization:   round2(utilization),
			}
		}

		load.PeakUtilization = round2(peak)
		load.AverageUtilization = round2(total / float64(windowDays))

		perResource[resource.ID] = &load
	}

	slices.Sort(unassigned)

	return &LoadReport{
			Window:      window,
			PerResource: perResource,
			Unassigned:  unassigned,
		},
		nil
}
