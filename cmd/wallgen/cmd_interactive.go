package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/wallgen"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive wallpaper session",
	Long: `Type a prompt to generate a batch. Commands:

  /samples       list sample prompts
  /sample N      generate from sample N
  /view N        open wallpaper N
  /close         close the viewer
  /save [N]      save wallpaper N (default: the one in the viewer)
  /regen         regenerate from the viewed wallpaper's prompt
  /settings      show key settings
  /key set KEY   save a key
  /key test [KEY] test a key (default: the stored key)
  /key clear     remove the stored key
  /quit          exit`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func runInteractive(cmd *cobra.Command, args []string) error {
	session := wallgen.NewSession(app.client, app.credentials, app.storage, app.logger)
	r := &repl{
		session: session,
		out:     cmd.OutOrStdout(),
	}
	return r.run(cmd.Context(), cmd.InOrStdin())
}

type repl struct {
	session *wallgen.Session
	out     io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(r.out, "Describe a wallpaper, or /samples for ideas. /quit to exit.")

	for {
		fmt.Fprint(r.out, " >  ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			r.generate(ctx, func(ctx context.Context) error { return r.session.Submit(ctx, line) })
			continue
		}

		if quit := r.command(ctx, line); quit {
			return nil
		}
	}
}

func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, rest := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true

	case "/samples":
		for i, p := range wallgen.SamplePrompts {
			fmt.Fprintf(r.out, "%2d) %s\n", i+1, p)
		}

	case "/sample":
		idx, ok := r.index(rest, len(wallgen.SamplePrompts))
		if !ok {
			return false
		}
		prompt := wallgen.SamplePrompts[idx]
		fmt.Fprintf(r.out, "%s\n", prompt)
		r.generate(ctx, func(ctx context.Context) error { return r.session.Submit(ctx, prompt) })

	case "/view":
		images := r.session.State().Images
		idx, ok := r.index(rest, len(images))
		if !ok {
			return false
		}
		if err := r.session.Select(images[idx].ID); err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		r.printViewer()

	case "/close":
		r.session.CloseViewer()

	case "/save":
		id := ""
		if len(rest) > 0 {
			images := r.session.State().Images
			idx, ok := r.index(rest, len(images))
			if !ok {
				return false
			}
			id = images[idx].ID
		}
		res, err := r.session.Download(ctx, id)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		fmt.Fprintf(r.out, "Saved %s\n", res.Location)

	case "/regen":
		r.generate(ctx, r.session.Regenerate)

	case "/settings":
		r.session.OpenSettings()
		defer r.session.CloseSettings()
		if key, ok := r.session.StoredKey(); ok {
			fmt.Fprintf(r.out, "Stored key: %s\n", maskKey(key))
		} else {
			fmt.Fprintln(r.out, "No stored key")
		}

	case "/key":
		r.key(ctx, rest)

	default:
		fmt.Fprintf(r.out, "Unknown command %s\n", name)
	}

	return false
}

func (r *repl) key(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: /key set KEY | /key test [KEY] | /key clear")
		return
	}

	switch args[0] {
	case "set":
		if len(args) < 2 {
			fmt.Fprintln(r.out, wallgen.ErrEmptyKey)
			return
		}
		if err := r.session.SaveKey(args[1]); err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
		fmt.Fprintln(r.out, "Key saved")

	case "test":
		key := ""
		if len(args) > 1 {
			key = args[1]
		} else if stored, ok := r.session.StoredKey(); ok {
			key = stored
		}
		ctx, cancel := withTimeout(ctx)
		defer cancel()
		if r.session.TestKey(ctx, key) {
			fmt.Fprintln(r.out, "Connection OK")
		} else {
			fmt.Fprintln(r.out, "Connection failed")
		}

	case "clear":
		r.session.ClearKey()
		fmt.Fprintln(r.out, "Stored key removed")

	default:
		fmt.Fprintf(r.out, "Unknown key command %s\n", args[0])
	}
}

// generate runs fn and prints the resulting grid or error.
func (r *repl) generate(ctx context.Context, fn func(context.Context) error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	fmt.Fprintln(r.out, "Generating...")
	if err := fn(ctx); err != nil {
		if errors.Is(err, wallgen.ErrNothingSelected) {
			fmt.Fprintln(r.out, "Open a wallpaper with /view N first")
			return
		}
		if msg := r.session.State().Error; msg != "" {
			fmt.Fprintln(r.out, msg)
			return
		}
		fmt.Fprintln(r.out, err)
		return
	}

	r.printGrid()
}

func (r *repl) printGrid() {
	st := r.session.State()
	for i, w := range st.Images {
		fmt.Fprintf(r.out, "%2d) %s (%s)\n", i+1, wallgen.DownloadName(w), w.MIMEType)
	}
}

func (r *repl) printViewer() {
	st := r.session.State()
	if st.Selected == nil {
		return
	}
	fmt.Fprintf(r.out, "Viewing %s\n  prompt: %s\n  /save, /regen or /close\n", wallgen.DownloadName(*st.Selected), st.Selected.Prompt)
}

// index parses a 1-based index from args[0].
func (r *repl) index(args []string, n int) (int, bool) {
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Missing number")
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		fmt.Fprintf(r.out, "Pick a number between 1 and %d\n", n)
		return 0, false
	}
	return i - 1, true
}
