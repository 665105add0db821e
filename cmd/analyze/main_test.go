package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/config"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/skills"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/storage"
)

func job(title, description string, salary mo.Option[float64]) models.JobRow {
	return models.JobRow{
		Title:       mo.Some(title),
		Description: mo.Some(description),
		SalaryMin:   salary,
		SalaryMax:   salary,
	}
}

func testConfig(t *testing.T, rows []models.JobRow) config.Config {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	require.NoError(t, storage.WriteJobs(raw, rows))

	return config.Config{
		Paths: config.Paths{
			RawCSV:    raw,
			OutputDir: filepath.Join(dir, "cleaned"),
		},
		Analysis: config.Analysis{MinSalarySamples: 2},
	}
}

func TestRunWritesOutputs(t *testing.T) {
	rows := []models.JobRow{
		job("Data Analyst", "SQL and Excel", mo.Some(40000.0)),
		job("BI Analyst", "SQL, Power BI", mo.Some(50000.0)),
		job("Analyst", "Excel reporting", mo.Some(30000.0)),
		job("Junior Analyst", "Excel", mo.None[float64]()),
	}
	cfg := testConfig(t, rows)
	cfg.Paths.SQLite = filepath.Join(t.TempDir(), "skills.db")
	log, hook := test.NewNullLogger()
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), cfg, log, &out))

	dict := skills.DefaultDictionary()
	enriched, err := storage.ReadEnriched(cfg.Paths.EnrichedCSV(), dict)
	require.NoError(t, err)
	require.Len(t, enriched, 4)
	assert.True(t, enriched[0].Skills["SQL"])
	assert.True(t, enriched[1].Skills["Power BI"])
	assert.Equal(t, mo.Some(40000.0), enriched[0].SalaryAvg)
	assert.False(t, enriched[3].SalaryAvg.IsPresent())

	counts, err := os.ReadFile(cfg.Paths.SkillCountsCSV())
	require.NoError(t, err)
	assert.Contains(t, string(counts), "Excel,3,75.0\n")
	assert.Contains(t, string(counts), "SQL,2,50.0\n")

	salaries, err := os.ReadFile(cfg.Paths.SkillSalaryCSV())
	require.NoError(t, err)
	assert.Contains(t, string(salaries), "SQL,2,45000,30000\n")
	assert.Contains(t, string(salaries), "Excel,2,35000,50000\n")

	db, err := sql.Open("sqlite", cfg.Paths.SQLite)
	require.NoError(t, err)
	defer db.Close()
	var top string
	require.NoError(t, db.QueryRow("select skill from skill_counts order by num_jobs desc limit 1").Scan(&top))
	assert.Equal(t, "Excel", top)

	assert.Contains(t, out.String(), "Skill frequency across 4 jobs")
	for _, entry := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, entry.Level, entry.Message)
	}
}

func TestRunWarnsWithoutSalaries(t *testing.T) {
	rows := []models.JobRow{
		job("Data Analyst", "SQL", mo.None[float64]()),
		job("Data Analyst", "Excel", mo.None[float64]()),
	}
	cfg := testConfig(t, rows)
	log, hook := test.NewNullLogger()
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), cfg, log, &out))

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
			assert.Contains(t, entry.Message, "no salary data")
		}
	}
	assert.Equal(t, 1, warnings)

	salaries, err := os.ReadFile(cfg.Paths.SkillSalaryCSV())
	require.NoError(t, err)
	assert.Equal(t, "\ufeffskill,jobs_with_skill,avg_salary_with_skill,avg_salary_without_skill\n", string(salaries))
}

func TestRunWarnsOnInsufficientSamples(t *testing.T) {
	rows := []models.JobRow{
		job("Data Analyst", "SQL", mo.Some(40000.0)),
		job("Data Analyst", "Excel", mo.Some(30000.0)),
	}
	cfg := testConfig(t, rows)
	cfg.Analysis.MinSalarySamples = 5
	log, hook := test.NewNullLogger()

	require.NoError(t, run(context.Background(), cfg, log, &bytes.Buffer{}))

	require.NotNil(t, hook.LastEntry())
	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			found = true
			assert.Contains(t, entry.Message, "not enough salary samples")
		}
	}
	assert.True(t, found)
}

func TestRunCustomDictionary(t *testing.T) {
	rows := []models.JobRow{job("Engineer", "dbt and snowflake", mo.None[float64]())}
	cfg := testConfig(t, rows)
	cfg.Paths.SkillsFile = filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(cfg.Paths.SkillsFile, []byte(`skills:
  - name: dbt
    patterns: ['\bdbt\b']
  - name: Snowflake
    patterns: ['\bsnowflake\b']
`), 0644))
	log, _ := test.NewNullLogger()

	require.NoError(t, run(context.Background(), cfg, log, &bytes.Buffer{}))

	counts, err := os.ReadFile(cfg.Paths.SkillCountsCSV())
	require.NoError(t, err)
	assert.Equal(t, "\ufeffskill,num_jobs,percent_of_jobs\ndbt,1,100.0\nSnowflake,1,100.0\n", string(counts))
}

func TestRunDropsRowsMissingRequiredFields(t *testing.T) {
	rows := []models.JobRow{
		job("Data Analyst", "SQL", mo.Some(40000.0)),
		job("Data Analyst", "", mo.Some(30000.0)),
		{Title: mo.None[string](), Description: mo.Some("Excel")},
	}
	cfg := testConfig(t, rows)
	log, hook := test.NewNullLogger()

	require.NoError(t, run(context.Background(), cfg, log, &bytes.Buffer{}))

	enriched, err := storage.ReadEnriched(cfg.Paths.EnrichedCSV(), skills.DefaultDictionary())
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, mo.Some("SQL"), enriched[0].Description)

	var dropped []logrus.Fields
	for _, entry := range hook.AllEntries() {
		if entry.Message == "dropped rows missing a title or description" {
			dropped = append(dropped, entry.Data)
		}
	}
	require.Len(t, dropped, 1)
	assert.Equal(t, 2, dropped[0]["dropped"])
}

func TestRunFromSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "skills.db")
	store, err := storage.OpenSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceJobs(context.Background(), []models.JobRow{
		job("Data Analyst", "SQL and Excel", mo.Some(40000.0)),
		job("BI Analyst", "Power BI", mo.None[float64]()),
	}))
	require.NoError(t, store.Close())

	dir := t.TempDir()
	cfg := config.Config{
		Paths: config.Paths{
			RawCSV:    filepath.Join(dir, "absent.csv"),
			OutputDir: dir,
			SQLite:    dbPath,
		},
		Analysis: config.Analysis{MinSalarySamples: 1, FromSQLite: true},
	}
	log, _ := test.NewNullLogger()

	require.NoError(t, run(context.Background(), cfg, log, &bytes.Buffer{}))

	enriched, err := storage.ReadEnriched(cfg.Paths.EnrichedCSV(), skills.DefaultDictionary())
	require.NoError(t, err)
	require.Len(t, enriched, 2)
	assert.True(t, enriched[0].Skills["Excel"])
	assert.True(t, enriched[1].Skills["Power BI"])
}

func TestRunFromSQLiteNeedsDatabase(t *testing.T) {
	dir := t.TempDir()
	log, _ := test.NewNullLogger()

	cfg := config.Config{
		Paths:    config.Paths{OutputDir: dir},
		Analysis: config.Analysis{FromSQLite: true},
	}
	err := run(context.Background(), cfg, log, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from-sqlite")

	cfg.Paths.SQLite = filepath.Join(dir, "absent.db")
	err = run(context.Background(), cfg, log, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, cfg.Paths.SQLite)
}

func TestRunMissingInput(t *testing.T) {
	cfg := config.Config{Paths: config.Paths{RawCSV: filepath.Join(t.TempDir(), "absent.csv"), OutputDir: t.TempDir()}}
	log, _ := test.NewNullLogger()

	err := run(context.Background(), cfg, log, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Config{Paths: config.Paths{RawCSV: "a.csv", OutputDir: "out"}}

	applyFlags(&cfg, options{input: "b.csv", skillsFile: "s.yaml", sqlite: "s.db", fromSQLite: true})

	assert.Equal(t, "b.csv", cfg.Paths.RawCSV)
	assert.Equal(t, "s.db", cfg.Paths.SQLite)
	assert.True(t, cfg.Analysis.FromSQLite)
	assert.Equal(t, "out", cfg.Paths.OutputDir)
	assert.Equal(t, "s.yaml", cfg.Paths.SkillsFile)
}
