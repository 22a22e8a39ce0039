package tasks

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/recur/internal/models"
)

func ids(list []models.Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringOrder_Scenario(t *testing.T) {
	now := day(2024, 6, 1)
	taskDone := models.Task{ID: "done", Completed: true, Created: day(2023, 1, 1)}
	taskOverdue := models.Task{
		ID:              "overdue",
		RepeatEnabled:   true,
		CooldownSeconds: 3600,
		LastCompleted:   now.Add(-3 * time.Hour),
		Created:         day(2022, 1, 1),
	}
	taskNotDone := models.Task{ID: "notdone", Created: day(2024, 1, 1)}

	got := Sort([]models.Task{taskDone, taskOverdue, taskNotDone}, RecurringOrder(now))
	assert.Equal(t, []string{"overdue", "notdone", "done"}, ids(got))
}

func TestRecurringOrder_FullPrecedence(t *testing.T) {
	now := day(2024, 6, 1)
	list := []models.Task{
		// completed one-shot, newest
		{ID: "c-oneshot-new", Completed: true, Created: day(2024, 5, 1)},
		// completed one-shot, older
		{ID: "c-oneshot-old", Completed: true, Created: day(2020, 5, 1)},
		// in cooldown, due in 10 minutes
		{ID: "c-soon", RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: now.Add(-50 * time.Minute), Created: day(2021, 1, 1)},
		// in cooldown, due in 20 hours
		{ID: "c-later", RepeatEnabled: true, CooldownSeconds: 0, LastCompleted: now.Add(-4 * time.Hour), Created: day(2024, 1, 1)},
		// overdue by 1h
		{ID: "p-1h", RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: now.Add(-2 * time.Hour), Created: day(2024, 1, 1)},
		// overdue by 5h
		{ID: "p-5h", RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: now.Add(-6 * time.Hour), Created: day(2019, 1, 1)},
		// never completed
		{ID: "p-never", RepeatEnabled: true, CooldownSeconds: 3600, Created: day(2024, 5, 30)},
		// open one-shots ordered by creation, then id
		{ID: "o-b", Created: day(2023, 1, 1)},
		{ID: "o-a", Created: day(2023, 1, 1)},
		{ID: "o-new", Created: day(2024, 1, 1)},
	}
	want := []string{"p-never", "p-5h", "p-1h", "o-new", "o-a", "o-b", "c-soon", "c-later", "c-oneshot-new", "c-oneshot-old"}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Task(nil), list...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, want, ids(Sort(shuffled, RecurringOrder(now))))
	}
}

func TestRecurringOrder_BoundaryFlip(t *testing.T) {
	last := day(2024, 6, 1)
	rep := models.Task{ID: "rep", RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: last}
	open := models.Task{ID: "open", Created: day(2000, 1, 1)}

	before := Sort([]models.Task{rep, open}, RecurringOrder(last.Add(time.Hour-time.Second)))
	assert.Equal(t, []string{"open", "rep"}, ids(before))

	at := Sort([]models.Task{open, rep}, RecurringOrder(last.Add(time.Hour)))
	assert.Equal(t, []string{"rep", "open"}, ids(at))
}

func TestRecurringOrder_StrictWeakOrdering(t *testing.T) {
	now := day(2024, 6, 1)
	list := []models.Task{
		{ID: "a", Completed: true},
		{ID: "b", RepeatEnabled: true, LastCompleted: now.Add(-time.Hour)},
		{ID: "c", RepeatEnabled: true, CooldownSeconds: 60, LastCompleted: now.Add(-time.Hour)},
		{ID: "d"},
		{ID: "e", RepeatEnabled: true},
	}
	c := RecurringOrder(now)
	for _, a := range list {
		assert.Zero(t, c(a, a))
		for _, b := range list {
			assert.Equal(t, -sign(c(a, b)), sign(c(b, a)))
			for _, x := range list {
				if c(a, b) < 0 && c(b, x) < 0 {
					assert.Negative(t, c(a, x))
				}
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestSimpleOrder(t *testing.T) {
	list := []models.Task{
		{ID: "1", Description: "task10"},
		{ID: "2", Description: "task2", Completed: true},
		{ID: "3", Description: "task2"},
		{ID: "4", Description: "task1", RepeatEnabled: true},
		{ID: "0", Description: "task2"},
	}
	got := Sort(list, SimpleOrder())
	assert.Equal(t, []string{"4", "0", "3", "1", "2"}, ids(got))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	list := []models.Task{{ID: "b"}, {ID: "a"}}
	_ = Sort(list, SimpleOrder())
	assert.Equal(t, []string{"b", "a"}, ids(list))
}

func TestOrderByName(t *testing.T) {
	for _, name := range OrderNames() {
		o, err := OrderByName(name)
		require.NoError(t, err)
		require.NotNil(t, o)
	}
	_, err := OrderByName("random")
	assert.Error(t, err)
}
