package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "prefixnet",
		Short: "Sharded network churn simulator",
		Long: `prefixnet simulates a network whose address space is partitioned into
prefix-addressed sections. Nodes join, age, relocate, and leave; sections
split when they grow too large and merge back when they shrink, and the
simulator records per-tick statistics of the resulting churn.`,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
