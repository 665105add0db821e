package analysis

import (
	"math"
	"sort"

	"github.com/samber/mo"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/skills"
)

// EnrichedRow is a job row with its skill features and average salary
type EnrichedRow struct {
	models.JobRow
	Skills    skills.FeatureRow
	SalaryAvg mo.Option[float64]
}

// SkillCount is one line of the skill frequency summary
type SkillCount struct {
	Skill         string
	NumJobs       int
	PercentOfJobs float64
}

// SkillSalary is one line of the salary comparison summary
type SkillSalary struct {
	Skill                 string
	JobsWithSkill         int
	AvgSalaryWithSkill    float64
	AvgSalaryWithoutSkill mo.Option[float64]
}

// SalaryReport is the salary comparison plus why it may be empty
type SalaryReport struct {
	Stats []SkillSalary
	// SalariedRows is the number of rows with a salary_avg
	SalariedRows int
	// Skipped is set when no row has salary data
	Skipped bool
	// Insufficient is set when rows had salary data but no skill met the sample threshold
	Insufficient bool
}

// SalaryAvg is the mean of whichever of salary_min and salary_max are present
func SalaryAvg(row models.JobRow) mo.Option[float64] {
	var sum float64
	var n int
	if v, ok := row.SalaryMin.Get(); ok {
		sum += v
		n++
	}
	if v, ok := row.SalaryMax.Get(); ok {
		sum += v
		n++
	}
	if n == 0 {
		return mo.None[float64]()
	}
	return mo.Some(sum / float64(n))
}

// Enrich tags every row and attaches its salary average
func Enrich(rows []models.JobRow, tagger *skills.Tagger) []EnrichedRow {
	features := tagger.TagRows(rows)
	enriched := make([]EnrichedRow, len(rows))
	for i, row := range rows {
		enriched[i] = EnrichedRow{
			JobRow:    row,
			Skills:    features[i],
			SalaryAvg: SalaryAvg(row),
		}
	}
	return enriched
}

// FrequencySummary counts rows per skill, most common first. Ties keep
// dictionary order.
func FrequencySummary(dict *skills.Dictionary, rows []EnrichedRow) []SkillCount {
	names := dict.Names()
	counts := make([]SkillCount, len(names))
	for i, name := range names {
		n := 0
		for _, row := range rows {
			if row.Skills[name] {
				n++
			}
		}
		counts[i] = SkillCount{Skill: name, NumJobs: n, PercentOfJobs: percent(n, len(rows))}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].NumJobs > counts[j].NumJobs
	})
	return counts
}

// SalarySummary compares mean salary_avg of rows with and without each skill.
// Only rows with a salary_avg take part; skills seen in fewer than minSamples
// of them are left out. Sorted by mean salary with the skill, highest first.
func SalarySummary(dict *skills.Dictionary, rows []EnrichedRow, minSamples int) SalaryReport {
	salaried := make([]EnrichedRow, 0, len(rows))
	for _, row := range rows {
		if row.SalaryAvg.IsPresent() {
			salaried = append(salaried, row)
		}
	}

	report := SalaryReport{SalariedRows: len(salaried), Stats: []SkillSalary{}}
	if len(salaried) == 0 {
		report.Skipped = true
		return report
	}

	for _, name := range dict.Names() {
		var withSum, withoutSum float64
		var withN, withoutN int
		for _, row := range salaried {
			v := row.SalaryAvg.MustGet()
			if row.Skills[name] {
				withSum += v
				withN++
			} else {
				withoutSum += v
				withoutN++
			}
		}

		if withN < minSamples {
			continue
		}

		stat := SkillSalary{
			Skill:                 name,
			JobsWithSkill:         withN,
			AvgSalaryWithSkill:    withSum / float64(withN),
			AvgSalaryWithoutSkill: mo.None[float64](),
		}
		if withoutN > 0 {
			stat.AvgSalaryWithoutSkill = mo.Some(withoutSum / float64(withoutN))
		}
		report.Stats = append(report.Stats, stat)
	}

	sort.SliceStable(report.Stats, func(i, j int) bool {
		return report.Stats[i].AvgSalaryWithSkill > report.Stats[j].AvgSalaryWithSkill
	})
	report.Insufficient = len(report.Stats) == 0
	return report
}

// percent is n/total as a percentage rounded to one decimal place
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
