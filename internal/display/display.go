// Package display formats tasks for terminal output.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/tasks"
)

// ShortID returns the first eight characters of an ID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Status describes a task's derived state in a few words, such as
// "3 hours overdue", "2 days left", "never done" or "done".
func Status(t models.Task, d tasks.Derived, now time.Time) string {
	if pending, ok := d.Pending.Get(); ok {
		if t.RepeatEnabled && tasks.NeverCompleted(t.LastCompleted) {
			return "never done"
		}
		if pending < time.Second {
			return "due now"
		}
		return humanize.RelTime(now.Add(-pending), now, "overdue", "")
	}
	if until, ok := d.UntilDue.Get(); ok {
		if until < time.Second {
			return "due now"
		}
		return humanize.RelTime(now.Add(until), now, "", "left")
	}
	if d.Completed {
		return "done"
	}
	return "open"
}

// Every describes a recurring task's cooldown, e.g. "every 1 day". It is
// empty for one-shot tasks.
func Every(t models.Task) string {
	if !t.RepeatEnabled {
		return ""
	}
	base := time.Unix(0, 0)
	span := humanize.RelTime(base, base.Add(tasks.EffectiveCooldown(t)), "", "")
	return "every " + strings.TrimSpace(span)
}

// Ago describes an instant relative to now, e.g. "3 days ago".
func Ago(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

// WriteTable prints tasks, in the given order, as an aligned table.
func WriteTable(w io.Writer, list []models.Task, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tSTATUS\tREPEAT\tDESCRIPTION")
	for _, t := range list {
		d := tasks.Derive(t, now)
		mark := " "
		if d.Completed {
			mark = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n",
			ShortID(t.ID), mark, Status(t, d, now), Every(t), t.Description)
	}
	return tw.Flush()
}
