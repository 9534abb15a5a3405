package schedule_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theoremus-urban-solutions/mnr-arrivals/schedule"
)

func TestRelation(t *testing.T) {
	nums := []int{5, 1, 4, 2, 3}

	evens := schedule.From(nums).Where(func(n int) bool { return n%2 == 0 }).Collect()
	assert.Equal(t, []int{4, 2}, evens)

	strs := schedule.FilterMap(schedule.From(nums), func(n int) (string, bool) {
		return strconv.Itoa(n * 10), n > 2
	}).Collect()
	assert.Equal(t, []string{"50", "40", "30"}, strs)

	sorted := schedule.From(nums).SortedBy(func(a, b int) int { return a - b })
	assert.Equal(t, []int{1, 2, 3, 4, 5}, sorted)
	assert.Equal(t, []int{5, 1, 4, 2, 3}, nums, "source slice must not be reordered")

	assert.Empty(t, schedule.From([]int(nil)).Collect())
}

func TestRelation_Lazy(t *testing.T) {
	calls := 0
	rel := schedule.From([]int{1, 2, 3}).Where(func(n int) bool {
		calls++
		return true
	})
	assert.Equal(t, 0, calls)

	for n := range rel.All() {
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, calls)
}

func TestJoin(t *testing.T) {
	type trip struct{ id, service string }
	type service struct{ id, day string }

	trips := []trip{{"T1", "S1"}, {"T2", "S2"}, {"T3", "S1"}, {"T4", "S9"}}
	services := []service{{"S1", "mon"}, {"S2", "tue"}, {"S1", "wed"}}

	got := schedule.Join(schedule.From(trips), schedule.From(services),
		func(t trip) string { return t.service },
		func(s service) string { return s.id },
		func(t trip, s service) string { return t.id + "/" + s.day },
	).Collect()

	assert.Equal(t, []string{"T1/mon", "T1/wed", "T2/tue", "T3/mon", "T3/wed"}, got)

	stable := schedule.From([]trip{{"b", "2"}, {"a", "1"}, {"c", "1"}}).
		SortedBy(func(x, y trip) int { return int(x.service[0]) - int(y.service[0]) })
	assert.Equal(t, []trip{{"a", "1"}, {"c", "1"}, {"b", "2"}}, stable)
}
