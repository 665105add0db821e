package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/mo"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/analysis"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/skills"
)

// utf8BOM prefixes every written file so spreadsheet tools detect the encoding
const utf8BOM = "\ufeff"

// ColSalaryAvg is the trailing column of the enriched dataset
const ColSalaryAvg = "salary_avg"

// Summary file columns
var (
	SkillCountColumns  = []string{"skill", "num_jobs", "percent_of_jobs"}
	SkillSalaryColumns = []string{"skill", "jobs_with_skill", "avg_salary_with_skill", "avg_salary_without_skill"}
)

// WriteJobs overwrites path with the raw dataset
func WriteJobs(path string, rows []models.JobRow) (err error) {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = jobRecord(row)
	}
	err = writeCSV(path, models.Columns, records)
	if err != nil {
		err = errors.Wrap(err, "failed to write jobs")
		return err
	}
	return err
}

// ReadJobs loads a raw dataset written by WriteJobs
func ReadJobs(path string) (rows []models.JobRow, err error) {
	var t *table
	t, err = readCSV(path, models.Columns)
	if err != nil {
		err = errors.Wrap(err, "failed to read jobs")
		return rows, err
	}

	rows = make([]models.JobRow, 0, len(t.records))
	for i := range t.records {
		var row models.JobRow
		row, err = t.job(i)
		if err != nil {
			err = errors.Wrapf(err, "failed to read jobs from %s", path)
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, err
}

// EnrichedColumns is the raw columns, one has_<skill> column per skill, then salary_avg
func EnrichedColumns(dict *skills.Dictionary) []string {
	names := dict.Names()
	columns := make([]string, 0, len(models.Columns)+len(names)+1)
	columns = append(columns, models.Columns...)
	for _, name := range names {
		columns = append(columns, skills.ColumnName(name))
	}
	return append(columns, ColSalaryAvg)
}

// WriteEnriched overwrites path with the jobs-with-skills dataset
func WriteEnriched(path string, dict *skills.Dictionary, rows []analysis.EnrichedRow) (err error) {
	names := dict.Names()
	records := make([][]string, len(rows))
	for i, row := range rows {
		record := jobRecord(row.JobRow)
		for _, name := range names {
			record = append(record, formatBool(mo.Some(row.Skills[name])))
		}
		records[i] = append(record, formatFloat(row.SalaryAvg))
	}

	err = writeCSV(path, EnrichedColumns(dict), records)
	if err != nil {
		err = errors.Wrap(err, "failed to write enriched jobs")
		return err
	}
	return err
}

// ReadEnriched loads a dataset written by WriteEnriched with the same dictionary
func ReadEnriched(path string, dict *skills.Dictionary) (rows []analysis.EnrichedRow, err error) {
	var t *table
	t, err = readCSV(path, EnrichedColumns(dict))
	if err != nil {
		err = errors.Wrap(err, "failed to read enriched jobs")
		return rows, err
	}

	names := dict.Names()
	rows = make([]analysis.EnrichedRow, 0, len(t.records))
	for i := range t.records {
		row := analysis.EnrichedRow{Skills: make(skills.FeatureRow, len(names))}
		row.JobRow, err = t.job(i)
		if err != nil {
			break
		}
		for _, name := range names {
			var present mo.Option[bool]
			present, err = t.flag(i, skills.ColumnName(name))
			if err != nil {
				break
			}
			row.Skills[name] = present.OrElse(false)
		}
		if err != nil {
			break
		}
		row.SalaryAvg, err = t.number(i, ColSalaryAvg)
		if err != nil {
			break
		}
		rows = append(rows, row)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to read enriched jobs from %s", path)
		return nil, err
	}
	return rows, err
}

// WriteSkillCounts overwrites path with the frequency summary
func WriteSkillCounts(path string, counts []analysis.SkillCount) (err error) {
	records := make([][]string, len(counts))
	for i, c := range counts {
		records[i] = []string{
			c.Skill,
			strconv.Itoa(c.NumJobs),
			strconv.FormatFloat(c.PercentOfJobs, 'f', 1, 64),
		}
	}
	err = writeCSV(path, SkillCountColumns, records)
	if err != nil {
		err = errors.Wrap(err, "failed to write skill counts")
		return err
	}
	return err
}

// WriteSkillSalary overwrites path with the salary summary. An empty summary
// still gets a header row.
func WriteSkillSalary(path string, stats []analysis.SkillSalary) (err error) {
	records := make([][]string, len(stats))
	for i, s := range stats {
		records[i] = []string{
			s.Skill,
			strconv.Itoa(s.JobsWithSkill),
			formatFloat(mo.Some(s.AvgSalaryWithSkill)),
			formatFloat(s.AvgSalaryWithoutSkill),
		}
	}
	err = writeCSV(path, SkillSalaryColumns, records)
	if err != nil {
		err = errors.Wrap(err, "failed to write skill salary stats")
		return err
	}
	return err
}

func jobRecord(row models.JobRow) []string {
	return []string{
		row.JobID.OrElse(""),
		row.Title.OrElse(""),
		row.Company.OrElse(""),
		row.Category.OrElse(""),
		row.LocationDisplay.OrElse(""),
		row.City.OrElse(""),
		row.ContractType.OrElse(""),
		row.ContractTime.OrElse(""),
		row.Created.OrElse(""),
		row.Description.OrElse(""),
		row.RedirectURL.OrElse(""),
		formatFloat(row.SalaryMin),
		formatFloat(row.SalaryMax),
		formatBool(row.SalaryIsPredicted),
	}
}

func formatFloat(v mo.Option[float64]) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(v mo.Option[bool]) string {
	b, ok := v.Get()
	if !ok {
		return ""
	}
	if b {
		return "1"
	}
	return "0"
}

func writeCSV(path string, header []string, records [][]string) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", path)
		return err
	}

	var f *os.File
	f, err = os.Create(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s", path)
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	_, err = f.WriteString(utf8BOM)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", path)
		return err
	}

	w := csv.NewWriter(f)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(records)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", path)
		return err
	}
	return err
}

// table is a parsed CSV file with columns addressed by header name
type table struct {
	columns map[string]int
	records [][]string
}

func readCSV(path string, required []string) (t *table, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", path)
		return t, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	var all [][]string
	all, err = csv.NewReader(bytes.NewReader(keepQuotedCRLF(data))).ReadAll()
	if err != nil {
		err = errors.Wrapf(err, "failed to parse %s", path)
		return t, err
	}
	if len(all) == 0 {
		err = errors.Errorf("%s has no header row", path)
		return t, err
	}

	t = &table{columns: make(map[string]int, len(all[0])), records: all[1:]}
	for i, name := range all[0] {
		t.columns[name] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			err = errors.Errorf("%s is missing column %q", path, name)
			return nil, err
		}
	}
	return t, err
}

// keepQuotedCRLF doubles the \r of every \r\n inside a quoted field.
// csv.Reader folds each line ending \r\n to \n, quoted or not, so the
// doubled form reads back as the original \r\n.
func keepQuotedCRLF(data []byte) []byte {
	if !bytes.Contains(data, []byte("\r\n")) {
		return data
	}
	out := make([]byte, 0, len(data)+bytes.Count(data, []byte("\r\n")))
	quoted := false
	for i, b := range data {
		switch {
		case b == '"':
			quoted = !quoted
		case b == '\r' && quoted && i+1 < len(data) && data[i+1] == '\n':
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}

func (t *table) text(i int, column string) mo.Option[string] {
	v := t.records[i][t.columns[column]]
	if v == "" {
		return mo.None[string]()
	}
	return mo.Some(v)
}

func (t *table) number(i int, column string) (mo.Option[float64], error) {
	v := t.records[i][t.columns[column]]
	if v == "" {
		return mo.None[float64](), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return mo.None[float64](), errors.Errorf("row %d: column %s: invalid number %q", i+1, column, v)
	}
	return mo.Some(f), nil
}

func (t *table) flag(i int, column string) (mo.Option[bool], error) {
	v := t.records[i][t.columns[column]]
	if v == "" {
		return mo.None[bool](), nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return mo.None[bool](), errors.Errorf("row %d: column %s: invalid flag %q", i+1, column, v)
	}
	return mo.Some(b), nil
}

func (t *table) job(i int) (row models.JobRow, err error) {
	row = models.JobRow{
		JobID:           t.text(i, models.ColJobID),
		Title:           t.text(i, models.ColTitle),
		Company:         t.text(i, models.ColCompany),
		Category:        t.text(i, models.ColCategory),
		LocationDisplay: t.text(i, models.ColLocationDisplay),
		City:            t.text(i, models.ColCity),
		ContractType:    t.text(i, models.ColContractType),
		ContractTime:    t.text(i, models.ColContractTime),
		Created:         t.text(i, models.ColCreated),
		Description:     t.text(i, models.ColDescription),
		RedirectURL:     t.text(i, models.ColRedirectURL),
	}
	row.SalaryMin, err = t.number(i, models.ColSalaryMin)
	if err != nil {
		return row, err
	}
	row.SalaryMax, err = t.number(i, models.ColSalaryMax)
	if err != nil {
		return row, err
	}
	row.SalaryIsPredicted, err = t.flag(i, models.ColSalaryIsPredicted)
	return row, err
}
