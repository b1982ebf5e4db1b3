package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "List connected outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, stop, err := connectClient(ctx)
		if err != nil {
			return err
		}
		defer stop()

		outputs, err := client.Outputs(ctx)
		if err != nil {
			return fmt.Errorf("listing outputs: %w", err)
		}
		for _, o := range outputs {
			fmt.Printf("%s\t%dx%d+%d+%d\t%s\n",
				o.Name, o.Width, o.Height, o.X, o.Y, o.Description)
		}
		return nil
	},
}
