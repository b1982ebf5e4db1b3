package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelkit/panelkit/internal/compositor"
	"github.com/panelkit/panelkit/internal/config"
	"github.com/panelkit/panelkit/internal/shell"
	"github.com/panelkit/panelkit/internal/wlclient"
)

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List and switch workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		workspaces, err := listWorkspaces(ctx)
		if err != nil {
			return err
		}
		for _, ws := range workspaces {
			mark := " "
			switch {
			case ws.Visibility.Focused:
				mark = "*"
			case ws.Visibility.Visible:
				mark = "+"
			}
			fmt.Printf("%s %s\t%s\t%d windows\n", mark, ws.Name, ws.Monitor, ws.Windows)
		}
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workspacesCmd.RunE(cmd, args)
	},
}

var workspaceFocusCmd = &cobra.Command{
	Use:   "focus <name>",
	Short: "Switch to the named workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()

		err = client.FocusWorkspace(ctx, args[0])
		if !errors.Is(err, wlclient.ErrUnsupported) {
			return err
		}

		backend, err := compositor.Detect(config.Get().Compositor)
		if err != nil {
			return fmt.Errorf("no workspace protocol and no IPC backend: %w", err)
		}
		return backend.Focus(compositor.Ref{Name: args[0]})
	},
}

// listWorkspaces prefers the generic protocol and falls back to the
// compositor's own IPC.
func listWorkspaces(ctx context.Context) ([]shell.Workspace, error) {
	client, stop, err := connectClient(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	workspaces, err := client.Workspaces(ctx)
	if !errors.Is(err, wlclient.ErrUnsupported) {
		return workspaces, err
	}

	backend, err := compositor.Detect(config.Get().Compositor)
	if err != nil {
		return nil, fmt.Errorf("no workspace protocol and no IPC backend: %w", err)
	}
	return backend.Workspaces()
}

func init() {
	workspacesCmd.AddCommand(workspaceListCmd)
	workspacesCmd.AddCommand(workspaceFocusCmd)
}
