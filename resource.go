package optimizer

import (
	"slices"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"
)

type ResourceID int64

// Resource is a read-only snapshot of one capacity-bearing team member.
type Resource struct {
	Name       string
	Type       string
	Department string
	Skills     []string

	DailyCapacity float64 // hours per day

	ID ResourceID
}

// HasSkills reports whether the resource covers every required skill.
func (res *Resource) HasSkills(required []string) bool {
	for _, skill := range required {
		if !slices.Contains(res.Skills, skill) {
			return false
		}
	}

	return true
}

type ParamsNewResource struct {
	Name       string `valid:"required"`
	Type       string
	Department string
	Skills     []string

	DailyCapacity float64

	ID ResourceID `valid:"required"`
}

func (params *ParamsNewResource) IsValid() error {
	if _, errValidation := govalidator.ValidateStruct(params); errValidation != nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewResource",
			Issue:  errValidation,
		}
	}

	if params.DailyCapacity <= 0 {
		return ErrInvalidResourceCapacity{
			ResourceID: params.ID,
			Capacity:   params.DailyCapacity,
		}
	}

	return nil
}

func NewResource(params *ParamsNewResource) (*Resource, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil,
			errValidation
	}

	return &Resource{
			Name:       params.Name,
			Type:       params.Type,
			Department: params.Department,
			Skills:     params.Skills,

			DailyCapacity: params.DailyCapacity,

			ID: params.ID,
		},
		nil
}
