package tasks

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/fentz26/recur/internal/compare"
	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/optional"
)

// Ordering builds the comparer used to sort a task list at now.
type Ordering func(now time.Time) compare.Comparer[models.Task]

// Named orderings accepted by OrderByName.
const (
	OrderRecurring = "recurring"
	OrderSimple    = "simple"
)

var orderings = map[string]Ordering{
	OrderRecurring: RecurringOrder,
	OrderSimple:    func(time.Time) compare.Comparer[models.Task] { return SimpleOrder() },
}

// OrderByName returns a named ordering.
func OrderByName(name string) (Ordering, error) {
	o, ok := orderings[name]
	if !ok {
		return nil, fmt.Errorf("unknown order %q, must be one of: %v", name, OrderNames())
	}
	return o, nil
}

// OrderNames lists the accepted ordering names.
func OrderNames() []string {
	names := make([]string, 0, len(orderings))
	for n := range orderings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type optionalDuration = optional.Value[time.Duration]

var byDuration compare.Comparer[time.Duration] = compare.Numbers[time.Duration]

// RecurringOrder sorts tasks that need doing first. Among those, the most
// overdue recurring tasks come first and one-shot tasks follow. Among done
// tasks, the one coming due soonest comes first and done one-shot tasks
// follow. Remaining ties go to the newest task, then to the ID.
func RecurringOrder(now time.Time) compare.Comparer[models.Task] {
	return compare.Ordered(
		compare.By(func(t models.Task) bool { return IsCompleted(t, now) }, compare.Booleans),
		compare.By(
			func(t models.Task) optionalDuration { return PendingDuration(t, now) },
			compare.IfDefined(compare.Invert(byDuration), compare.Options{UndefinedIsLarger: true}),
		),
		compare.By(
			func(t models.Task) optionalDuration { return TimeUntilDue(t, now) },
			compare.IfDefined(byDuration, compare.Options{UndefinedIsLarger: true}),
		),
		compare.By(func(t models.Task) time.Time { return t.Created }, compare.Invert(compare.Times)),
		byID,
	)
}

// SimpleOrder ignores recurrence: open tasks first, then by description.
func SimpleOrder() compare.Comparer[models.Task] {
	return compare.Ordered(
		compare.By(func(t models.Task) bool { return t.Completed }, compare.Booleans),
		compare.By(func(t models.Task) string { return t.Description }, compare.Strings),
		byID,
	)
}

var byID = compare.By(func(t models.Task) string { return t.ID }, compare.Strings)

// Sort returns a sorted copy of list.
func Sort(list []models.Task, order compare.Comparer[models.Task]) []models.Task {
	sorted := slices.Clone(list)
	slices.SortFunc(sorted, order)
	return sorted
}
