package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDay(t *testing.T, value string) Day {
	t.Helper()

	day, errParse := ParseDay(value)
	require.NoError(t, errParse)

	return day
}

func interval(start, end Day) DayInterval {
	return DayInterval{
		Start: start,
		End:   end,
	}
}
