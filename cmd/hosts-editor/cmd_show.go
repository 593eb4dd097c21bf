package main

import (
	"github.com/spf13/cobra"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the hosts file",
	Long: `Print the hosts file with line numbers.

Use --raw to write the bare content to stdout, e.g. for piping.`,
	Args: cobra.NoArgs,
	RunE: showHosts,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the content without decoration")
	rootCmd.AddCommand(showCmd)
}

func showHosts(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.ShowHosts(cmd.Context(), showRaw)
}
