package main

import (
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine, privilege and timing status",
	Long: `Read the hosts file once, then display the cache fingerprint, watcher
state, the current user's privileges, per-operation timings and heap usage.`,
	Args: cobra.NoArgs,
	RunE: showStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	// A failed check is part of the report, not a command failure.
	if res := app.Engine.Read(cmd.Context()); !res.Success && !statusJSON {
		app.UI.ShowError("Could not read "+app.Engine.Path(), res.Error)
	}
	return app.ShowStatus(statusJSON)
}
