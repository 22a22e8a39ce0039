package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/recur/internal/display"
	"github.com/fentz26/recur/internal/models"
	"github.com/fentz26/recur/internal/server"
	"github.com/fentz26/recur/internal/tasks"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add [description]",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, most urgent first",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskSetDone(args[0], true)
	},
}

var taskUndoCmd = &cobra.Command{
	Use:   "undo [task-id]",
	Short: "Mark a task not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskSetDone(args[0], false)
	},
}

var taskRmCmd = &cobra.Command{
	Use:     "rm [task-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskRm,
}

var (
	taskEvery string
	taskDesc  string
	taskOnce  bool
	listOrder string
	listJSON  bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskDoneCmd, taskUndoCmd, taskRmCmd)

	taskAddCmd.Flags().StringVar(&taskEvery, "every", "", "Make the task recurring with this cooldown (e.g. 12h, 3d)")

	taskListCmd.Flags().StringVar(&listOrder, "order", "", "Re-sort locally: recurring or simple")
	taskListCmd.Flags().BoolVar(&listJSON, "json", false, "Print the daemon's JSON")

	taskEditCmd.Flags().StringVar(&taskDesc, "desc", "", "New description")
	taskEditCmd.Flags().StringVar(&taskEvery, "every", "", "Make the task recurring with this cooldown")
	taskEditCmd.Flags().BoolVar(&taskOnce, "once", false, "Make the task one-shot")
	taskEditCmd.MarkFlagsMutuallyExclusive("every", "once")
}

func printTask(prefix string, resp []byte) error {
	var entry server.EntryResponse
	if err := json.Unmarshal(resp, &entry); err != nil {
		return err
	}
	now := time.Now()
	fmt.Printf("%s %s: %s (%s)\n", prefix, display.ShortID(entry.ID), entry.Description,
		display.Status(entry.Task, tasks.Derive(entry.Task, now), now))
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	desc := strings.Join(args, " ")
	fields := models.TaskFields{Description: &desc}
	if taskEvery != "" {
		secs, err := tasks.ParseCooldown(taskEvery)
		if err != nil {
			return err
		}
		repeat := true
		fields.RepeatEnabled = &repeat
		fields.CooldownSeconds = &secs
	}

	resp, err := apiPost("/tasks", fields)
	if err != nil {
		return err
	}
	return printTask("Created task", resp)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	if listJSON {
		resp, err := apiGet("/tasks")
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(resp)
		return err
	}

	entries, err := fetchTasks()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	list := make([]models.Task, len(entries))
	for i, e := range entries {
		list[i] = e.Task
	}

	now := time.Now()
	if listOrder != "" {
		order, err := tasks.OrderByName(listOrder)
		if err != nil {
			return err
		}
		list = tasks.Sort(list, order(now))
	}
	return display.WriteTable(os.Stdout, list, now)
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	id, err := resolveTaskID(args[0])
	if err != nil {
		return err
	}
	resp, err := apiGet("/tasks/" + id)
	if err != nil {
		return err
	}

	var entry server.EntryResponse
	if err := json.Unmarshal(resp, &entry); err != nil {
		return err
	}

	now := time.Now()
	t := entry.Task
	d := tasks.Derive(t, now)

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Status:      %s\n", display.Status(t, d, now))
	if t.RepeatEnabled {
		fmt.Printf("Repeats:     %s\n", display.Every(t))
		fmt.Printf("Last done:   %s\n", display.Ago(t.LastCompleted, now))
		if due, ok := tasks.DueAt(t); ok {
			fmt.Printf("Due:         %s\n", due.Local().Format(time.RFC1123))
		}
	} else {
		fmt.Printf("Repeats:     no\n")
	}
	fmt.Printf("Created:     %s\n", display.Ago(t.Created, now))
	fmt.Printf("Updated:     %s\n", display.Ago(t.Updated, now))

	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	var fields models.TaskFields
	if cmd.Flags().Changed("desc") {
		fields.Description = &taskDesc
	}
	if taskEvery != "" {
		secs, err := tasks.ParseCooldown(taskEvery)
		if err != nil {
			return err
		}
		repeat := true
		fields.RepeatEnabled = &repeat
		fields.CooldownSeconds = &secs
	}
	if taskOnce {
		repeat := false
		fields.RepeatEnabled = &repeat
	}
	if fields.IsEmpty() {
		return fmt.Errorf("nothing to edit: pass --desc, --every or --once")
	}

	id, err := resolveTaskID(args[0])
	if err != nil {
		return err
	}
	resp, err := apiPatch("/tasks/"+id, fields)
	if err != nil {
		return err
	}
	return printTask("Updated task", resp)
}

func runTaskSetDone(prefix string, done bool) error {
	id, err := resolveTaskID(prefix)
	if err != nil {
		return err
	}

	action, label := "/done", "Done"
	if !done {
		action, label = "/undo", "Not done"
	}
	resp, err := apiPost("/tasks/"+id+action, nil)
	if err != nil {
		return err
	}
	return printTask(label, resp)
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	id, err := resolveTaskID(args[0])
	if err != nil {
		return err
	}
	if err := apiDelete("/tasks/" + id); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", display.ShortID(id))
	return nil
}
