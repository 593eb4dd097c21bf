package main

import (
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the hosts file in $EDITOR",
	Long: `Open the hosts file in $VISUAL or $EDITOR and save the result after
confirmation.`,
	Args: cobra.NoArgs,
	RunE: editHosts,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func editHosts(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.EditHosts(cmd.Context())
}
