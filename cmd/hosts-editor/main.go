package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zoro11031/hosts-editor/internal/cli"
	"github.com/zoro11031/hosts-editor/internal/config"
	"github.com/zoro11031/hosts-editor/pkg/version"
)

var (
	configPath     string
	hostsPath      string
	nonInteractive bool
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "hosts-editor",
	Short: "View and edit the system hosts file",
	Long: `A hosts file editor with an in-memory cache, retrying disk access,
timestamped backups and external change detection.

Writing the hosts file needs root on Linux and macOS, or an elevated
prompt on Windows.

Run without arguments to launch the interactive menu.`,
	SilenceUsage:  true, // We handle errors manually, but silence usage on error
	SilenceErrors: true, // We format errors ourselves for consistent output
	RunE:          runInteractiveMenu,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Launch interactive menu",
	Long:  `Launch the interactive menu interface.`,
	RunE:  runInteractiveMenu,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	flags.StringVar(&hostsPath, "hosts-path", "", "Hosts file to manage instead of the platform default")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; fail when input is required")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(menuCmd)
}

// newAppContext builds the application from config plus command-line overrides.
func newAppContext(watch bool) (*cli.AppContext, error) {
	overrides := map[string]interface{}{}
	if hostsPath != "" {
		overrides[config.KeyHostsPath] = hostsPath
	}
	if logLevel != "" {
		overrides[config.KeyLoggingLevel] = logLevel
	}

	app, err := cli.NewAppContext(cli.Options{
		ConfigPath:     configPath,
		Overrides:      overrides,
		NonInteractive: nonInteractive,
		Watch:          watch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return app, nil
}

func runInteractiveMenu(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(true)
	if err != nil {
		return err
	}
	defer app.Close()

	return cli.NewMenu(app).Show(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
