package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/recur/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of recur",
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(version.String())

	// Report the daemon too when one is reachable.
	if health, err := CheckHealth(); err == nil {
		fmt.Printf("  daemon: %s at %s\n", health.Version, apiAddr)
	}
}
