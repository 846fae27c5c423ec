package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naka-gawa/drucred/internal/config"
	"github.com/naka-gawa/drucred/internal/gateway"
	"github.com/naka-gawa/drucred/internal/logging"
	"github.com/naka-gawa/drucred/internal/report"
	"github.com/naka-gawa/drucred/internal/store"
	"github.com/naka-gawa/drucred/internal/usecase"
)

// projectIDArg accepts exactly one positive numeric project node id.
func projectIDArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("requires exactly one project node id, received %d argument(s)", len(args))
	}
	_, err := parseProjectID(args[0])
	return err
}

func parseProjectID(s string) (int, error) {
	nid, err := strconv.Atoi(s)
	if err != nil || nid <= 0 {
		return 0, fmt.Errorf("invalid project node id %q: pass a numeric node id", s)
	}
	return nid, nil
}

func runAudit(cmd *cobra.Command, v *viper.Viper, opts *options, args []string) (err error) {
	// Arguments are valid past this point; later failures are not usage errors.
	cmd.SilenceUsage = true

	nid, err := parseProjectID(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(cmd.ErrOrStderr(), level)
	logger.Debug("configuration loaded",
		"base_url", cfg.API.BaseURL,
		"store", cfg.Cache.Store,
		"cache_dir", cfg.Cache.Dir,
		"output_dir", cfg.Report.OutputDir,
		"token_set", cfg.API.Token != "")

	st, err := store.Open(cfg.Cache.Store, cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close cache: %w", cerr))
		}
	}()

	drupal := gateway.NewDrupalGateway(gateway.Options{
		BaseURL:     cfg.API.BaseURL,
		UserAgent:   cfg.API.UserAgent,
		Token:       cfg.API.Token,
		StatusFixed: cfg.API.StatusFixed,
		PageLimit:   cfg.API.PageLimit,
		Retries:     cfg.API.Retries,
		BackoffStep: cfg.API.BackoffStep,
		ErrorDelay:  cfg.API.ErrorDelay,
		PageDelay:   cfg.API.PageDelay,
	}, logger)
	cache := usecase.NewIssueCache(drupal, st, logger, cfg.API.IssueDelay)
	auditor := usecase.NewAuditor(drupal, cache, logger)

	ctx := cmd.Context()
	project, err := auditor.Project(ctx, nid)
	if err != nil {
		return err
	}

	counts, err := auditor.Run(ctx, project, cfg.Cache.Refresh)
	if err != nil {
		return fmt.Errorf("audit of %s failed: %w", project.Slug, err)
	}

	paths, err := report.WriteFiles(cfg.Report.OutputDir, project, counts, cfg.Report.TopN)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s and %s\n", paths.Markdown, paths.CSV)
	return nil
}
