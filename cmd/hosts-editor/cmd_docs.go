package main

import (
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Open the documentation in your browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext(false)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.OpenDocs(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
