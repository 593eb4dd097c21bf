package main

import (
	"github.com/spf13/cobra"
)

var restoreYes bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the hosts file",
	Long: `Copy the hosts file as it is on disk into the backup directory
(backup.dir, or your documents directory) as
hosts-backup-<timestamp>.txt.`,
	Args: cobra.NoArgs,
	RunE: backupHosts,
}

var backupsCmd = &cobra.Command{
	Use:     "backups",
	Aliases: []string{"list-backups"},
	Short:   "List backups, newest first",
	Args:    cobra.NoArgs,
	RunE:    listBackups,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [NAME]",
	Short: "Restore a backup",
	Long: `Write a backup back to the hosts file.

Without NAME you are asked to pick one. Use --yes to skip the confirmation
prompt, e.g. together with --non-interactive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: restoreBackup,
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func backupHosts(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.BackupHosts(cmd.Context())
}

func listBackups(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = app.ListBackups()
	return err
}

func restoreBackup(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(false)
	if err != nil {
		return err
	}
	defer app.Close()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return app.RestoreBackup(cmd.Context(), name, restoreYes)
}
