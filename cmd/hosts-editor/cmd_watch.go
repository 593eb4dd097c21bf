package main

import (
	"github.com/spf13/cobra"
)

var watchContent bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report external changes to the hosts file",
	Long: `Watch the hosts file and print a line each time another program
changes its content. Rewrites with identical content are not reported.

Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: watchHosts,
}

func init() {
	watchCmd.Flags().BoolVar(&watchContent, "content", false, "Also print the new content to stdout")
	rootCmd.AddCommand(watchCmd)
}

func watchHosts(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	// Prime the cache so the first change is compared against real content.
	if res := app.Engine.Read(cmd.Context()); !res.Success {
		app.UI.Warningf("Initial read failed: %s", res.Error)
	}
	return app.Watch(cmd.Context(), watchContent)
}
