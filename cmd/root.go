// Package cmd contains the CLI of the application, built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naka-gawa/drucred/internal/config"
)

// options holds the flags that are not part of the configuration layer.
type options struct {
	configFile string
	verbose    bool
}

// NewRootCommand builds the drucred command with a fresh configuration instance.
func NewRootCommand() *cobra.Command {
	v := config.New()
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "drucred <project_nid>",
		Short: "Audit contributor credit on a Drupal.org project's fixed issues",
		Long: `drucred walks every fixed issue of a Drupal.org project, collects the
credit recorded on each one and writes a markdown report and a CSV with
credit counts per individual and per organization.

Fetched data is cached locally so an interrupted run can be resumed.`,
		Example:       "  drucred 3060\n  drucred 3060 --refresh --top 25",
		Args:          projectIDArg,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, v, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose/debug logging")
	flags.Bool("refresh", false, "Refetch the issue id list even when it is cached")
	flags.Int("top", 10, "Number of entries in the ranked sections")
	flags.String("output", "output", "Directory receiving the markdown report and the CSV")
	flags.String("cache-dir", "data", "Directory holding cached tracker responses")
	flags.String("store", "file", "Cache backend: file or bolt")

	bindFlags(v, cmd, map[string]string{
		config.KeyCacheRefresh: "refresh",
		config.KeyReportTopN:   "top",
		config.KeyReportOutput: "output",
		config.KeyCacheDir:     "cache-dir",
		config.KeyCacheStore:   "store",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
