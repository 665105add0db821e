package analysis

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/skills"
)

func testDictionary(t *testing.T) *skills.Dictionary {
	t.Helper()
	dict, err := skills.NewDictionary([]skills.Definition{
		{Name: "SQL", Patterns: []string{`\bsql\b`}},
		{Name: "Excel", Patterns: []string{`\bexcel\b`}},
		{Name: "Python", Patterns: []string{`\bpython\b`}},
	})
	require.NoError(t, err)
	return dict
}

func row(features skills.FeatureRow, salary mo.Option[float64]) EnrichedRow {
	return EnrichedRow{Skills: features, SalaryAvg: salary}
}

func TestSalaryAvg(t *testing.T) {
	testCases := []struct {
		name     string
		min      mo.Option[float64]
		max      mo.Option[float64]
		expected mo.Option[float64]
	}{
		{"both", mo.Some(30000.0), mo.Some(40000.0), mo.Some(35000.0)},
		{"min only", mo.Some(30000.0), mo.None[float64](), mo.Some(30000.0)},
		{"max only", mo.None[float64](), mo.Some(42000.0), mo.Some(42000.0)},
		{"neither", mo.None[float64](), mo.None[float64](), mo.None[float64]()},
		{"zero is a value", mo.Some(0.0), mo.Some(10.0), mo.Some(5.0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SalaryAvg(models.JobRow{SalaryMin: tc.min, SalaryMax: tc.max})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEnrich(t *testing.T) {
	rows := []models.JobRow{
		{Title: mo.Some("SQL Analyst"), Description: mo.Some("excel"), SalaryMin: mo.Some(30000.0), SalaryMax: mo.Some(40000.0)},
		{Title: mo.Some("Analyst"), Description: mo.Some("python")},
	}

	enriched := Enrich(rows, skills.NewTagger(testDictionary(t)))

	require.Len(t, enriched, 2)
	assert.Equal(t, rows[0], enriched[0].JobRow)
	assert.Equal(t, skills.FeatureRow{"SQL": true, "Excel": true, "Python": false}, enriched[0].Skills)
	assert.Equal(t, mo.Some(35000.0), enriched[0].SalaryAvg)
	assert.True(t, enriched[1].Skills["Python"])
	assert.False(t, enriched[1].SalaryAvg.IsPresent())
}

func TestFrequencySummary(t *testing.T) {
	dict := testDictionary(t)
	rows := make([]EnrichedRow, 10)
	for i := range rows {
		rows[i] = row(skills.FeatureRow{"SQL": i < 4, "Excel": i < 7, "Python": false}, mo.None[float64]())
	}

	counts := FrequencySummary(dict, rows)

	require.Len(t, counts, 3)
	assert.Equal(t, SkillCount{Skill: "Excel", NumJobs: 7, PercentOfJobs: 70.0}, counts[0])
	assert.Equal(t, SkillCount{Skill: "SQL", NumJobs: 4, PercentOfJobs: 40.0}, counts[1])
	assert.Equal(t, SkillCount{Skill: "Python", NumJobs: 0, PercentOfJobs: 0.0}, counts[2])
}

func TestFrequencySummaryRounding(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{
		row(skills.FeatureRow{"SQL": true}, mo.None[float64]()),
		row(skills.FeatureRow{}, mo.None[float64]()),
		row(skills.FeatureRow{}, mo.None[float64]()),
	}

	counts := FrequencySummary(dict, rows)

	assert.Equal(t, "SQL", counts[0].Skill)
	assert.Equal(t, 33.3, counts[0].PercentOfJobs)
}

func TestFrequencySummaryTiesKeepDictionaryOrder(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{row(skills.FeatureRow{"SQL": true, "Excel": true, "Python": true}, mo.None[float64]())}

	counts := FrequencySummary(dict, rows)

	assert.Equal(t, []string{"SQL", "Excel", "Python"}, []string{counts[0].Skill, counts[1].Skill, counts[2].Skill})
}

func TestFrequencySummaryEmpty(t *testing.T) {
	counts := FrequencySummary(testDictionary(t), nil)

	require.Len(t, counts, 3)
	for _, c := range counts {
		assert.Zero(t, c.NumJobs)
		assert.Equal(t, 0.0, c.PercentOfJobs)
	}
}

func TestSalarySummaryThreshold(t *testing.T) {
	dict := testDictionary(t)
	var rows []EnrichedRow
	// 3 salaried SQL rows, 6 salaried Excel rows, 2 salaried rows without either
	for i := 0; i < 3; i++ {
		rows = append(rows, row(skills.FeatureRow{"SQL": true}, mo.Some(50000.0)))
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, row(skills.FeatureRow{"Excel": true}, mo.Some(30000.0)))
	}
	rows = append(rows,
		row(skills.FeatureRow{}, mo.Some(20000.0)),
		row(skills.FeatureRow{}, mo.Some(20000.0)),
		row(skills.FeatureRow{"Excel": true}, mo.None[float64]()),
	)

	report := SalarySummary(dict, rows, 5)

	assert.False(t, report.Skipped)
	assert.False(t, report.Insufficient)
	assert.Equal(t, 11, report.SalariedRows)
	require.Len(t, report.Stats, 1)
	stat := report.Stats[0]
	assert.Equal(t, "Excel", stat.Skill)
	assert.Equal(t, 6, stat.JobsWithSkill)
	assert.InDelta(t, 30000.0, stat.AvgSalaryWithSkill, 1e-9)
	without, ok := stat.AvgSalaryWithoutSkill.Get()
	require.True(t, ok)
	assert.InDelta(t, (3*50000.0+2*20000.0)/5, without, 1e-9)
}

func TestSalarySummarySortedBySalary(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{
		row(skills.FeatureRow{"SQL": true}, mo.Some(40000.0)),
		row(skills.FeatureRow{"Excel": true}, mo.Some(25000.0)),
		row(skills.FeatureRow{"Python": true}, mo.Some(60000.0)),
	}

	report := SalarySummary(dict, rows, 1)

	require.Len(t, report.Stats, 3)
	assert.Equal(t, "Python", report.Stats[0].Skill)
	assert.Equal(t, "SQL", report.Stats[1].Skill)
	assert.Equal(t, "Excel", report.Stats[2].Skill)
}

func TestSalarySummaryWithoutGroupEmpty(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{
		row(skills.FeatureRow{"SQL": true}, mo.Some(40000.0)),
		row(skills.FeatureRow{"SQL": true}, mo.Some(50000.0)),
	}

	report := SalarySummary(dict, rows, 1)

	require.Len(t, report.Stats, 1)
	assert.Equal(t, "SQL", report.Stats[0].Skill)
	assert.InDelta(t, 45000.0, report.Stats[0].AvgSalaryWithSkill, 1e-9)
	assert.False(t, report.Stats[0].AvgSalaryWithoutSkill.IsPresent())
}

func TestSalarySummaryNoSalaryData(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{
		row(skills.FeatureRow{"SQL": true}, mo.None[float64]()),
		row(skills.FeatureRow{"Excel": true}, mo.None[float64]()),
	}

	report := SalarySummary(dict, rows, 5)

	assert.True(t, report.Skipped)
	assert.False(t, report.Insufficient)
	assert.Empty(t, report.Stats)
	assert.Zero(t, report.SalariedRows)
}

func TestSalarySummaryInsufficientSamples(t *testing.T) {
	dict := testDictionary(t)
	rows := []EnrichedRow{
		row(skills.FeatureRow{"SQL": true}, mo.Some(40000.0)),
		row(skills.FeatureRow{"SQL": true}, mo.Some(42000.0)),
		row(skills.FeatureRow{"Excel": true}, mo.Some(30000.0)),
	}

	report := SalarySummary(dict, rows, 5)

	assert.False(t, report.Skipped)
	assert.True(t, report.Insufficient)
	assert.Empty(t, report.Stats)
	assert.Equal(t, 3, report.SalariedRows)
}
