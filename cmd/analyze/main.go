package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/analysis"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/logger"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/skills"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/storage"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/ui"
)

type options struct {
	envFile    string
	input      string
	outputDir  string
	skillsFile string
	sqlite     string
	fromSQLite bool
	silence    bool
	debug      bool
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Tag skills in a collected dataset and summarize demand and salaries",
		Long: `analyze reads the raw dataset written by collect, flags which skills each
posting mentions and writes three files to the output directory:

  jobs_with_skills.csv     every posting with a has_<skill> column per skill
  skill_counts.csv         how many postings mention each skill
  skill_salary_stats.csv   mean salary of postings with and without each skill`,
		Example: `  analyze
  analyze --input jobs.csv --output-dir out
  analyze --skills skills.yaml --sqlite skills.db
  analyze --sqlite skills.db --from-sqlite`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			applyFlags(&cfg, opts)

			log := logger.New(opts.debug)
			ui.PrintBanner(opts.silence)

			var out io.Writer = os.Stdout
			if opts.silence {
				out = io.Discard
			}
			return run(cmd.Context(), cfg, log, out)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env", ".env", "env file holding overrides")
	cmd.Flags().StringVar(&opts.input, "input", "", "raw CSV path (default from SKILLSLEUTH_RAW_CSV)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "output directory (default from SKILLSLEUTH_OUTPUT_DIR)")
	cmd.Flags().StringVar(&opts.skillsFile, "skills", "", "YAML skill dictionary replacing the built-in one")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "also mirror the summaries into this SQLite database")
	cmd.Flags().BoolVar(&opts.fromSQLite, "from-sqlite", false, "read the jobs mirrored by collect from the SQLite database instead of the raw CSV")
	cmd.Flags().BoolVar(&opts.silence, "silence", false, "silence the banner and report tables")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	return cmd
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.input != "" {
		cfg.Paths.RawCSV = opts.input
	}
	if opts.outputDir != "" {
		cfg.Paths.OutputDir = opts.outputDir
	}
	if opts.skillsFile != "" {
		cfg.Paths.SkillsFile = opts.skillsFile
	}
	if opts.sqlite != "" {
		cfg.Paths.SQLite = opts.sqlite
	}
	if opts.fromSQLite {
		cfg.Analysis.FromSQLite = true
	}
}

func loadDictionary(path string) (*skills.Dictionary, error) {
	if path == "" {
		return skills.DefaultDictionary(), nil
	}
	return skills.LoadDictionary(path)
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger, out io.Writer) (err error) {
	dict, err := loadDictionary(cfg.Paths.SkillsFile)
	if err != nil {
		return err
	}

	rows, err := loadJobs(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"rows": len(rows), "skills": dict.Len()}).Info("loaded raw dataset")

	enriched := analysis.Enrich(rows, skills.NewTagger(dict))
	counts := analysis.FrequencySummary(dict, enriched)
	report := analysis.SalarySummary(dict, enriched, cfg.Analysis.MinSalarySamples)

	switch {
	case report.Skipped:
		log.Warn("no salary data available in the dataset, skipping salary analysis")
	case report.Insufficient:
		log.WithFields(logrus.Fields{
			"salaried_rows": report.SalariedRows,
			"min_samples":   cfg.Analysis.MinSalarySamples,
		}).Warn("not enough salary samples per skill to compute salary insights")
	}

	err = storage.WriteEnriched(cfg.Paths.EnrichedCSV(), dict, enriched)
	if err != nil {
		return err
	}
	err = storage.WriteSkillCounts(cfg.Paths.SkillCountsCSV(), counts)
	if err != nil {
		return err
	}
	err = storage.WriteSkillSalary(cfg.Paths.SkillSalaryCSV(), report.Stats)
	if err != nil {
		return err
	}
	log.WithField("dir", cfg.Paths.OutputDir).Info("saved enriched dataset and summaries")

	if cfg.Paths.SQLite != "" {
		err = mirror(ctx, cfg.Paths.SQLite, counts, report.Stats)
		if err != nil {
			return err
		}
		log.WithField("path", cfg.Paths.SQLite).Info("mirrored summaries to sqlite")
	}

	err = ui.PrintSkillCounts(out, counts, len(enriched))
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return ui.PrintSkillSalaries(out, report)
}

// loadJobs reads the raw dataset and drops rows without a title or description
func loadJobs(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (rows []models.JobRow, err error) {
	source := cfg.Paths.RawCSV
	if cfg.Analysis.FromSQLite {
		source = cfg.Paths.SQLite
		rows, err = readStore(ctx, source)
	} else {
		rows, err = storage.ReadJobs(source)
	}
	if err != nil {
		return nil, err
	}

	kept := make([]models.JobRow, 0, len(rows))
	for _, row := range rows {
		if row.HasRequiredFields() {
			kept = append(kept, row)
		}
	}
	log = log.WithField("source", source)
	if dropped := len(rows) - len(kept); dropped > 0 {
		log.WithField("dropped", dropped).Warn("dropped rows missing a title or description")
	}
	log.Debug("read raw dataset")
	return kept, err
}

func readStore(ctx context.Context, path string) (rows []models.JobRow, err error) {
	if path == "" {
		err = errors.New("--from-sqlite needs a database path (--sqlite or SKILLSLEUTH_SQLITE)")
		return rows, err
	}
	if _, err = os.Stat(path); err != nil {
		err = errors.Wrapf(err, "failed to open sqlite database: %s", path)
		return rows, err
	}

	store, err := storage.OpenSQLite(path)
	if err != nil {
		return rows, err
	}
	defer store.Close()
	return store.Jobs(ctx)
}

func mirror(ctx context.Context, path string, counts []analysis.SkillCount, stats []analysis.SkillSalary) (err error) {
	store, err := storage.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.ReplaceSkillCounts(ctx, counts)
	if err != nil {
		return err
	}
	return store.ReplaceSkillSalaries(ctx, stats)
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
