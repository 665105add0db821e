package storage

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/pkg/errors"
	"github.com/samber/mo"
	_ "modernc.org/sqlite"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/analysis"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
)

// schema creates the mirror tables when they do not exist yet
//
//go:embed schema.sql
var schema string

// Store mirrors the datasets into SQLite. Every Replace call swaps the whole
// table inside one transaction.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema
func OpenSQLite(path string) (store *Store, err error) {
	var db *sql.DB
	db, err = sql.Open("sqlite", path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open sqlite database: %s", path)
		return store, err
	}
	// an in-memory database exists per connection
	db.SetMaxOpenConns(1)

	store, err = NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, err
}

// NewStore applies the schema to db
func NewStore(db *sql.DB) (store *Store, err error) {
	_, err = db.Exec(schema)
	if err != nil {
		err = errors.Wrap(err, "failed to apply sqlite schema")
		return store, err
	}
	store = &Store{db: db}
	return store, err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceJobs overwrites the jobs table
func (s *Store) ReplaceJobs(ctx context.Context, rows []models.JobRow) error {
	return s.replace(ctx, "jobs", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `insert into jobs (
			job_id, title, company, category, location_display, city,
			contract_type, contract_time, created, description, redirect_url,
			salary_min, salary_max, salary_is_predicted
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, row := range rows {
			_, err = stmt.ExecContext(ctx,
				nullString(row.JobID),
				nullString(row.Title),
				nullString(row.Company),
				nullString(row.Category),
				nullString(row.LocationDisplay),
				nullString(row.City),
				nullString(row.ContractType),
				nullString(row.ContractTime),
				nullString(row.Created),
				nullString(row.Description),
				nullString(row.RedirectURL),
				nullFloat(row.SalaryMin),
				nullFloat(row.SalaryMax),
				nullBool(row.SalaryIsPredicted),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Jobs reads the jobs table back in insertion order
func (s *Store) Jobs(ctx context.Context) (rows []models.JobRow, err error) {
	var result *sql.Rows
	result, err = s.db.QueryContext(ctx, `select
		job_id, title, company, category, location_display, city,
		contract_type, contract_time, created, description, redirect_url,
		salary_min, salary_max, salary_is_predicted
	from jobs order by rowid`)
	if err != nil {
		err = errors.Wrap(err, "failed to query jobs")
		return rows, err
	}
	defer result.Close()

	for result.Next() {
		var (
			text      [11]sql.NullString
			salaryMin sql.NullFloat64
			salaryMax sql.NullFloat64
			predicted sql.NullInt64
		)
		err = result.Scan(
			&text[0], &text[1], &text[2], &text[3], &text[4], &text[5],
			&text[6], &text[7], &text[8], &text[9], &text[10],
			&salaryMin, &salaryMax, &predicted,
		)
		if err != nil {
			err = errors.Wrap(err, "failed to scan job")
			return nil, err
		}

		row := models.JobRow{
			JobID:             optionString(text[0]),
			Title:             optionString(text[1]),
			Company:           optionString(text[2]),
			Category:          optionString(text[3]),
			LocationDisplay:   optionString(text[4]),
			City:              optionString(text[5]),
			ContractType:      optionString(text[6]),
			ContractTime:      optionString(text[7]),
			Created:           optionString(text[8]),
			Description:       optionString(text[9]),
			RedirectURL:       optionString(text[10]),
			SalaryMin:         optionFloat(salaryMin),
			SalaryMax:         optionFloat(salaryMax),
			SalaryIsPredicted: mo.None[bool](),
		}
		if predicted.Valid {
			row.SalaryIsPredicted = mo.Some(predicted.Int64 != 0)
		}
		rows = append(rows, row)
	}
	err = result.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to read jobs")
		return nil, err
	}
	return rows, err
}

// ReplaceSkillCounts overwrites the skill_counts table
func (s *Store) ReplaceSkillCounts(ctx context.Context, counts []analysis.SkillCount) error {
	return s.replace(ctx, "skill_counts", func(tx *sql.Tx) error {
		for _, c := range counts {
			_, err := tx.ExecContext(ctx,
				"insert into skill_counts (skill, num_jobs, percent_of_jobs) values (?, ?, ?)",
				c.Skill, c.NumJobs, c.PercentOfJobs,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceSkillSalaries overwrites the skill_salary_stats table
func (s *Store) ReplaceSkillSalaries(ctx context.Context, stats []analysis.SkillSalary) error {
	return s.replace(ctx, "skill_salary_stats", func(tx *sql.Tx) error {
		for _, st := range stats {
			_, err := tx.ExecContext(ctx,
				`insert into skill_salary_stats
				(skill, jobs_with_skill, avg_salary_with_skill, avg_salary_without_skill)
				values (?, ?, ?, ?)`,
				st.Skill, st.JobsWithSkill, st.AvgSalaryWithSkill, nullFloat(st.AvgSalaryWithoutSkill),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// skillCounts reads the skill_counts table, most common first
func (s *Store) skillCounts(ctx context.Context) (counts []analysis.SkillCount, err error) {
	var result *sql.Rows
	result, err = s.db.QueryContext(ctx,
		"select skill, num_jobs, percent_of_jobs from skill_counts order by num_jobs desc, rowid")
	if err != nil {
		err = errors.Wrap(err, "failed to query skill counts")
		return counts, err
	}
	defer result.Close()

	for result.Next() {
		var c analysis.SkillCount
		err = result.Scan(&c.Skill, &c.NumJobs, &c.PercentOfJobs)
		if err != nil {
			err = errors.Wrap(err, "failed to scan skill count")
			return nil, err
		}
		counts = append(counts, c)
	}
	err = result.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to read skill counts")
		return nil, err
	}
	return counts, err
}

// replace runs fill after clearing table, all in one transaction
func (s *Store) replace(ctx context.Context, table string, fill func(tx *sql.Tx) error) (err error) {
	var tx *sql.Tx
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.Wrapf(err, "failed to begin transaction for %s", table)
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from "+table)
	if err != nil {
		err = errors.Wrapf(err, "failed to clear %s", table)
		return err
	}

	err = fill(tx)
	if err != nil {
		err = errors.Wrapf(err, "failed to insert into %s", table)
		return err
	}

	err = tx.Commit()
	if err != nil {
		err = errors.Wrapf(err, "failed to commit %s", table)
		return err
	}
	return err
}

func nullString(v mo.Option[string]) sql.NullString {
	s, ok := v.Get()
	return sql.NullString{String: s, Valid: ok}
}

func nullFloat(v mo.Option[float64]) sql.NullFloat64 {
	f, ok := v.Get()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func nullBool(v mo.Option[bool]) sql.NullInt64 {
	b, ok := v.Get()
	if !ok {
		return sql.NullInt64{}
	}
	if b {
		return sql.NullInt64{Int64: 1, Valid: true}
	}
	return sql.NullInt64{Int64: 0, Valid: true}
}

func optionString(v sql.NullString) mo.Option[string] {
	if !v.Valid {
		return mo.None[string]()
	}
	return mo.Some(v.String)
}

func optionFloat(v sql.NullFloat64) mo.Option[float64] {
	if !v.Valid {
		return mo.None[float64]()
	}
	return mo.Some(v.Float64)
}
