package main

import (
	"os"

	"github.com/spf13/cobra"
)

var writeFrom string

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Replace the hosts file",
	Long: `Replace the hosts file with the content of another file, or with
standard input when --from is omitted or "-".

Empty content and content above the size limit are rejected before the
hosts file is touched.`,
	Example: `  hosts-editor write --from ./hosts.new
  grep -v ads /etc/hosts | sudo hosts-editor write`,
	Args: cobra.NoArgs,
	RunE: writeHosts,
}

func init() {
	writeCmd.Flags().StringVarP(&writeFrom, "from", "f", "", "File to read the new content from")
	rootCmd.AddCommand(writeCmd)
}

func writeHosts(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	if writeFrom == "" || writeFrom == "-" {
		return app.ImportReader(cmd.Context(), os.Stdin)
	}
	return app.ImportFile(cmd.Context(), writeFrom)
}
