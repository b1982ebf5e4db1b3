package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var toplevelsCmd = &cobra.Command{
	Use:   "toplevels",
	Short: "List and control toplevel windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()

		toplevels, err := client.Toplevels(ctx)
		if err != nil {
			return fmt.Errorf("listing toplevels: %w", err)
		}
		for _, t := range toplevels {
			mark := " "
			if t.Focused {
				mark = "*"
			}
			fmt.Printf("%s %d\t%s\t%s\t%s\n", mark, t.ID, t.AppID, t.Title, t.Output)
		}
		return nil
	},
}

var toplevelFocusCmd = &cobra.Command{
	Use:   "focus <id>",
	Short: "Activate a toplevel by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid toplevel id %q: %w", args[0], err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()

		return client.FocusToplevel(ctx, id)
	},
}

var toplevelCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Ask a toplevel to close",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid toplevel id %q: %w", args[0], err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()

		return client.CloseToplevel(ctx, id)
	},
}

func init() {
	toplevelsCmd.AddCommand(toplevelFocusCmd)
	toplevelsCmd.AddCommand(toplevelCloseCmd)
}
