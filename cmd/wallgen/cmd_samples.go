package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhpenta/wallgen"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the sample prompts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for i, p := range wallgen.SamplePrompts {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d) %s\n", i+1, p)
		}
	},
}
