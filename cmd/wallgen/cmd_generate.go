package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/wallgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a batch of wallpapers and save them",
	Long: `Sends the prompt four times in parallel and writes every wallpaper
that comes back to the output directory as wallpaper-<id>.<ext>.

Example:
  wallgen generate "Castle above pastel clouds"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	batch, err := app.client.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%s: %w", wallgen.UserMessage(err), err)
	}

	results, err := wallgen.SaveToStorage(ctx, app.storage, batch)
	for _, res := range results {
		fmt.Fprintln(cmd.OutOrStdout(), res.Location)
	}
	if err != nil {
		return fmt.Errorf("saving wallpapers: %w", err)
	}

	if n := len(batch.Images); n < wallgen.Attempts {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d attempts produced a wallpaper\n", n, wallgen.Attempts)
	}
	return nil
}
