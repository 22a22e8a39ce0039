package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/recur/internal/display"
	"github.com/fentz26/recur/internal/models"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent actions from the audit trail",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Number of entries to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	resp, err := apiGet(fmt.Sprintf("/audit?limit=%d", logLimit))
	if err != nil {
		return err
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal(resp, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No actions recorded")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tOUTCOME\tTASK\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			display.Ago(e.Timestamp, now), e.Action, e.Outcome, display.ShortID(e.TaskID), e.Details)
	}
	return w.Flush()
}
