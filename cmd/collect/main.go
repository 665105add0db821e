package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/adzuna"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/collector"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/logger"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/storage"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/ui"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/utils"
)

type options struct {
	envFile    string
	maxResults int
	output     string
	sqlite     string
	proxy      string
	silence    bool
	debug      bool
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect job listings into a raw CSV dataset",
		Long: `collect pages through the Adzuna job search API for one query and
location, normalizes every listing and writes the raw dataset as CSV.

Credentials are read from ADZUNA_APP_ID and ADZUNA_APP_KEY, either in the
environment or in the .env file.`,
		Example: `  collect
  collect --max-results 200 --output jobs.csv
  collect --sqlite skills.db --proxy http://localhost:8080 --silence`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, opts)

			log := logger.New(opts.debug)
			ui.PrintBanner(opts.silence)
			return run(cmd.Context(), cfg, opts, log)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env", ".env", "env file holding credentials and overrides")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", config.DefaultMaxResults, "maximum number of listings to collect")
	cmd.Flags().StringVar(&opts.output, "output", "", "raw CSV path (default from SKILLSLEUTH_RAW_CSV)")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "also mirror the jobs into this SQLite database")
	cmd.Flags().StringVar(&opts.proxy, "proxy", "", "proxy URL to use")
	cmd.Flags().BoolVar(&opts.silence, "silence", false, "silence the banner and progress bar")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	return cmd
}

// applyFlags lets explicitly set flags win over the environment
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	if cmd.Flags().Changed("max-results") {
		cfg.Search.MaxResults = opts.maxResults
	}
	if opts.output != "" {
		cfg.Paths.RawCSV = opts.output
	}
	if opts.sqlite != "" {
		cfg.Paths.SQLite = opts.sqlite
	}
}

func run(ctx context.Context, cfg config.Config, opts options, log logrus.FieldLogger) (err error) {
	err = cfg.RequireCredentials()
	if err != nil {
		return err
	}
	err = cfg.Search.Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid search configuration")
		return err
	}

	log.WithFields(logrus.Fields{
		"country":     cfg.Search.Country,
		"what":        cfg.Search.What,
		"where":       cfg.Search.Where,
		"max_results": cfg.Search.MaxResults,
	}).Info("starting collection")

	c := &collector.Collector{
		Fetcher: adzuna.NewClient(cfg.Search, cfg.Credentials, opts.proxy, log),
		Search:  cfg.Search,
		Log:     log,
	}
	if !opts.silence {
		c.Bar = pb.New(collector.PageCount(cfg.Search.MaxResults, cfg.Search.ResultsPerPage)).
			SetWriter(os.Stderr).
			Start()
	}

	result, err := c.Collect(ctx)
	if c.Bar != nil {
		c.Bar.Finish()
	}
	if err != nil {
		return err
	}

	err = storage.WriteJobs(cfg.Paths.RawCSV, result.Rows)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": cfg.Paths.RawCSV, "rows": len(result.Rows)}).Info("saved raw dataset")

	if cfg.Paths.SQLite != "" {
		var store *storage.Store
		store, err = storage.OpenSQLite(cfg.Paths.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()

		err = store.ReplaceJobs(ctx, result.Rows)
		if err != nil {
			return err
		}
		log.WithField("path", cfg.Paths.SQLite).Info("mirrored jobs to sqlite")
	}

	if !opts.silence {
		fmt.Printf("Saved %s jobs to %s (%s)\n",
			utils.FormatCount(len(result.Rows)), cfg.Paths.RawCSV, result.Reason)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
