package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/panelkit/panelkit/internal/config"
	"github.com/panelkit/panelkit/internal/logger"
	"github.com/panelkit/panelkit/internal/wlclient"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "panelkit",
		Short: "Panelkit - Wayland desktop panel core",
		Long: `Panelkit is the display-server protocol client behind a desktop panel.
It tracks outputs, toplevel windows, workspaces and the clipboard over the
compositor's extension protocols (with per-compositor IPC fallbacks) and
captures window thumbnails into GPU buffers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				config.SetConfigPath(configPath)
			}
			if err := config.Init(); err != nil {
				logger.Warn("loading config", "err", err)
			}
			if level := config.Get().Logging.LogLevel; level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(outputsCmd)
	rootCmd.AddCommand(toplevelsCmd)
	rootCmd.AddCommand(workspacesCmd)
	rootCmd.AddCommand(clipboardCmd)
	rootCmd.AddCommand(versionCmd)
}

// connectClient dials the compositor and starts the dispatch loop. The
// returned stop function tears the connection down.
func connectClient(ctx context.Context) (*wlclient.Client, func(), error) {
	client := wlclient.New()
	if node := config.Get().Capture.DeviceNode; node != "" {
		client.SetDeviceNode(node)
	}
	if err := client.Connect(); err != nil {
		return nil, nil, err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := client.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			logger.Error("event loop stopped", "err", err)
		}
	}()

	stop := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}
	return client, stop, nil
}

// Exit with error message
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
