package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/tasks"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func status(t models.Task) string {
	return Status(t, tasks.Derive(t, now), now)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want string
	}{
		{"open one-shot", models.Task{}, "open"},
		{"done one-shot", models.Task{Completed: true}, "done"},
		{"never done", models.Task{RepeatEnabled: true}, "never done"},
		{"overdue", models.Task{RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: now.Add(-4 * time.Hour)}, "3 hours overdue"},
		{"due now", models.Task{RepeatEnabled: true, CooldownSeconds: 3600, LastCompleted: now.Add(-time.Hour)}, "due now"},
		{"cooling down", models.Task{RepeatEnabled: true, CooldownSeconds: 3 * 86400, LastCompleted: now.Add(-time.Hour)}, "2 days left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(tt.task))
		})
	}
}

func TestEvery(t *testing.T) {
	assert.Equal(t, "", Every(models.Task{CooldownSeconds: 60}))
	assert.Equal(t, "every 1 day", Every(models.Task{RepeatEnabled: true}))
	assert.Equal(t, "every 1 hour", Every(models.Task{RepeatEnabled: true, CooldownSeconds: 3600}))
	assert.Equal(t, "every 10 minutes", Every(models.Task{RepeatEnabled: true, CooldownSeconds: 600}))
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "never", Ago(time.Time{}, now))
	assert.Equal(t, "3 days ago", Ago(now.Add(-3*24*time.Hour), now))
	assert.Equal(t, "1 hour from now", Ago(now.Add(90*time.Minute), now))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "01234567", ShortID("0123456789"))
}

func TestWriteTable(t *testing.T) {
	list := []models.Task{
		{ID: "aaaaaaaa-1", Description: "Stretch", RepeatEnabled: true},
		{ID: "bbbbbbbb-2", Description: "Call mum", Completed: true},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, list, now))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "aaaaaaaa")
	assert.Contains(t, lines[1], "never done")
	assert.Contains(t, lines[1], "every 1 day")
	assert.Contains(t, lines[2], "[x]")
	assert.Contains(t, lines[2], "Call mum")
	assert.NotContains(t, buf.String(), "-1")
}
