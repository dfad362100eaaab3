package optimizer

import (
	"fmt"
	"time"
)

const _SecondsPerDay = 24 * 60 * 60

// Day counts whole days since 1970-01-01 UTC. All interval arithmetic works
// on these integers; conversion to calendar dates happens only at the
// formatting boundary.
type Day int

func DayOf(moment time.Time) Day {
	return Day(moment.UTC().Unix() / _SecondsPerDay)
}

func ParseDay(value string) (Day, error) {
	moment, errParse := time.Parse(time.DateOnly, value)
	if errParse != nil {
		return 0,
			fmt.Errorf(
				"parse day %q: %w",
				value,
				errParse,
			)
	}

	return DayOf(moment),
		nil
}

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*_SecondsPerDay, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format(time.DateOnly)
}

// DayInterval is inclusive on both ends.
type DayInterval struct {
	Start Day
	End   Day
}

func (interval DayInterval) IsValid() bool {
	return interval.End >= interval.Start
}

func (interval DayInterval) Days() int {
	if interval.End < interval.Start {
		return 0
	}

	return int(interval.End-interval.Start) + 1
}

func (interval DayInterval) Contains(day Day) bool {
	return day >= interval.Start && day <= interval.End
}

func (interval DayInterval) Overlaps(other DayInterval) bool {
	return interval.Start <= other.End && other.Start <= interval.End
}

// Intersect returns the overlapping part of the two intervals and whether
// such a part exists.
func (interval DayInterval) Intersect(other DayInterval) (DayInterval, bool) {
	result := DayInterval{
		Start: max(interval.Start, other.Start),
		End:   min(interval.End, other.End),
	}

	return result,
		result.Start <= result.End
}

func (interval DayInterval) Shift(days int) DayInterval {
	return DayInterval{
		Start: interval.Start + Day(days),
		End:   interval.End + Day(days),
	}
}

func (interval DayInterval) String() string {
	return fmt.Sprintf(
		"[%s .. %s]",

		interval.Start,
		interval.End,
	)
}
