package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/wallgen"
)

// keyCmd manages the stored API key
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored Gemini API key",
	Long: `The key is kept obfuscated in the store file. This stops casual
reading, not a determined attacker.

Available subcommands:
  set   - Save a key (read from the argument or stdin)
  show  - Show the stored key, masked
  clear - Remove the stored key
  test  - Check a key against the API`,
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Save an API key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := keyArg(cmd, args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(key) == "" {
			return wallgen.ErrEmptyKey
		}

		app.credentials.Save(key)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", app.store.Path())
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key, masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := app.credentials.Load()
		if !ok {
			return wallgen.ErrNoCredential
		}
		fmt.Fprintln(cmd.OutOrStdout(), maskKey(key))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app.credentials.Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Stored key removed")
	},
}

var keyTestCmd = &cobra.Command{
	Use:   "test [key]",
	Short: "Check a key against the API (default: the stored key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else if stored, ok := app.credentials.Load(); ok {
			key = stored
		}

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		if !app.client.TestConnection(ctx, key) {
			return errors.New("connection failed")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Connection OK")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd, keyTestCmd)
}

// keyArg returns the key from args, or the first line of stdin.
func keyArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// maskKey keeps the first and last four characters.
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}
