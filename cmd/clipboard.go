package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelkit/panelkit/internal/clipboard"
	"github.com/panelkit/panelkit/internal/config"
	"github.com/panelkit/panelkit/internal/shell"
)

var clipboardCmd = &cobra.Command{
	Use:   "clipboard",
	Short: "Inspect and set the clipboard",
}

var clipboardHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted clipboard history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get().Clipboard
		if !cfg.Persist {
			return fmt.Errorf("clipboard history is not persisted; enable clipboard.persist")
		}
		history, err := clipboard.OpenHistory(cfg.Path, cfg.HistorySize)
		if err != nil {
			return fmt.Errorf("opening clipboard history: %w", err)
		}
		defer history.Close()

		items, err := history.Load()
		if err != nil {
			return fmt.Errorf("loading clipboard history: %w", err)
		}
		for _, item := range items {
			text := strings.ReplaceAll(item.Text, "\n", " ")
			if len(text) > 72 {
				text = text[:72] + "…"
			}
			fmt.Printf("%d\t%s\t%s\n", item.ID, item.Mime, text)
		}
		return nil
	},
}

var clipboardCopyCmd = &cobra.Command{
	Use:   "copy <text>",
	Short: "Publish text as the current selection",
	Long: `Publishes the given text as the clipboard selection and stays
alive to serve paste requests until interrupted or replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		defer connectCancel()

		client, stop, err := connectClient(connectCtx)
		if err != nil {
			return err
		}
		defer stop()

		item := shell.ClipboardItem{
			Mime: "text/plain;charset=utf-8",
			Kind: shell.ClipboardText,
			Text: args[0],
		}
		if err := client.CopyToClipboard(connectCtx, item); err != nil {
			return fmt.Errorf("setting selection: %w", err)
		}

		// The selection lives only as long as this source does. A clear
		// event means another client replaced it.
		events, cancelEvents, _ := client.SubscribeClipboard()
		defer cancelEvents()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-events:
				if e.Kind == shell.ClipboardAdd || e.Kind == shell.ClipboardActivate {
					return nil
				}
			}
		}
	},
}

func init() {
	clipboardCmd.AddCommand(clipboardHistoryCmd)
	clipboardCmd.AddCommand(clipboardCopyCmd)
}
