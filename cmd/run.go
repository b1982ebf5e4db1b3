package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panelkit/panelkit/internal/clipboard"
	"github.com/panelkit/panelkit/internal/compositor"
	"github.com/panelkit/panelkit/internal/config"
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/shell"
	"github.com/panelkit/panelkit/internal/wlclient"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the panel core and log normalized events",
	Long: `Connects to the compositor, binds all supported protocols and streams
the normalized event model to the log until interrupted. When the generic
workspace protocol is unavailable, the compositor IPC fallback feeds the
same workspace stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("connected", "features", client.String())

		if err := startWorkspaceFallback(ctx, client); err != nil {
			logger.Warn("workspace fallback unavailable", "err", err)
		}
		startClipboardHistory(ctx, client)

		outputs, cancelOutputs := client.SubscribeOutputs()
		defer cancelOutputs()
		toplevels, cancelToplevels := client.SubscribeToplevels()
		defer cancelToplevels()
		workspaces, cancelWorkspaces := client.SubscribeWorkspaces()
		defer cancelWorkspaces()
		clipboardEvents, cancelClipboard, replay := client.SubscribeClipboard()
		defer cancelClipboard()

		for _, item := range replay {
			logger.Info("clipboard history", "id", item.ID, "mime", item.Mime)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-outputs:
				logger.Info("output", "kind", e.Kind, "name", e.Output.Name,
					"geometry", e.Output)
			case e := <-toplevels:
				logger.Info("toplevel", "kind", e.Kind, "id", e.Toplevel.ID,
					"app", e.Toplevel.AppID, "title", e.Toplevel.Title,
					"focused", e.Toplevel.Focused)
			case e := <-workspaces:
				if e.Kind == shell.WorkspaceFocus {
					logger.Info("workspace", "kind", e.Kind.String(),
						"old", e.Old, "new", e.New)
					continue
				}
				logger.Info("workspace", "kind", e.Kind.String(),
					"name", e.Workspace.Name, "monitor", e.Workspace.Monitor,
					"visible", e.Workspace.Visibility.Visible,
					"focused", e.Workspace.Visibility.Focused)
			case e := <-clipboardEvents:
				logger.Info("clipboard", "kind", e.Kind, "id", e.Item.ID,
					"mime", e.Item.Mime)
			}
		}
	},
}

// startWorkspaceFallback routes a compositor IPC backend into the shared
// workspace stream when the generic protocol is missing.
func startWorkspaceFallback(ctx context.Context, client *wlclient.Client) error {
	if _, err := client.Workspaces(ctx); !errors.Is(err, wlclient.ErrUnsupported) {
		return nil // generic protocol works
	}

	backend, err := compositor.Detect(config.Get().Compositor)
	if err != nil {
		return err
	}
	logger.Info("using compositor IPC fallback", "backend", backend.Name())

	ch := make(chan shell.WorkspaceUpdate, 16)
	if err := backend.Subscribe(ctx, ch); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-ch:
				client.PublishWorkspaceUpdate(update)
			}
		}
	}()
	return nil
}

// startClipboardHistory loads persisted items into the cache and appends
// new text selections, when persistence is enabled. The watch does not
// count toward cache reference counts, so it never keeps dismissed
// entries alive.
func startClipboardHistory(ctx context.Context, client *wlclient.Client) {
	cfg := config.Get().Clipboard
	if !cfg.Persist {
		return
	}
	history, err := clipboard.OpenHistory(cfg.Path, cfg.HistorySize)
	if err != nil {
		logger.Warn("clipboard history unavailable", "err", err)
		return
	}

	items, err := history.Load()
	if err != nil {
		logger.Warn("loading clipboard history", "err", err)
	}
	for _, item := range items {
		client.ClipboardCache().Restore(item)
	}

	events, cancelWatch := client.WatchClipboard()
	go func() {
		defer history.Close()
		defer cancelWatch()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.Kind == shell.ClipboardAdd {
					if err := history.Append(e.Item); err != nil {
						logger.Warn("appending clipboard history", "err", err)
					}
				}
			}
		}
	}()
}
