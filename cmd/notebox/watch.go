package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print your notes every time they change",
	Long: `watch keeps a live query open and prints the full list on every
change, including changes made by other processes or synced devices.
Stop it with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		scope, err := requireScope(app)
		if err != nil {
			return err
		}

		sub, err := app.Notes.LiveQuery(ctx, scope)
		if err != nil {
			return fmt.Errorf("failed to watch notes: %w", err)
		}
		defer sub.Unsubscribe()

		out := cmd.OutOrStdout()
		for list := range sub.Updates() {
			fmt.Fprintf(out, "--- %s (%d notes)\n", time.Now().Format(time.TimeOnly), len(list))
			if err := printList(out, list, listJSON); err != nil {
				return err
			}
		}
		return sub.Err()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
