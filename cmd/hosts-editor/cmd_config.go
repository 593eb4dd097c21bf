package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoro11031/hosts-editor/internal/config"
	"github.com/zoro11031/hosts-editor/internal/ui"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
HOSTS_EDITOR_* environment variables and command-line flags.`,
	Args: cobra.NoArgs,
	RunE: showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  initConfig,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	if hostsPath != "" {
		overrides[config.KeyHostsPath] = hostsPath
	}
	if logLevel != "" {
		overrides[config.KeyLoggingLevel] = logLevel
	}

	cfg, err := config.Load(configPath, overrides)
	if err != nil {
		return err
	}

	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	u := ui.New()
	if cfg.Source() != "" {
		u.Infof("Loaded from %s", cfg.Source())
	} else {
		u.Info("No config file found; showing defaults")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if err := config.WriteDefault(path, configInitForce); err != nil {
		return err
	}
	ui.New().Successf("Configuration written to %s", path)
	return nil
}
