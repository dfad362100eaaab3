package optimizer

import "runtime"

type EffortSpreadPolicy string

// Effort is spread evenly across all calendar days of the task interval.
// No weekend exclusion unless a future policy introduces it.
const EffortSpreadUniform = EffortSpreadPolicy("uniform")

const DefaultOverloadThreshold = float64(80)

type Options struct {
	OverloadThreshold float64
	Concurrency       int
	EffortSpread      EffortSpreadPolicy
}

func DefaultOptions() Options {
	return Options{
		OverloadThreshold: DefaultOverloadThreshold,
		Concurrency:       runtime.NumCPU(),
		EffortSpread:      EffortSpreadUniform,
	}
}

// normalized fills unset fields with defaults without touching the receiver.
func (o Options) normalized() Options {
	result := o

	if result.OverloadThreshold <= 0 {
		result.OverloadThreshold = DefaultOverloadThreshold
	}

	if result.Concurrency <= 0 {
		result.Concurrency = runtime.NumCPU()
	}

	if len(result.EffortSpread) == 0 {
		result.EffortSpread = EffortSpreadUniform
	}

	return result
}
