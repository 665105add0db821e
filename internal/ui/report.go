package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/samber/mo"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/analysis"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/utils"
)

// PrintSkillCounts renders the frequency summary as a table
func PrintSkillCounts(w io.Writer, counts []analysis.SkillCount, totalJobs int) error {
	data := pterm.TableData{{"Skill", "Jobs", "% of jobs"}}
	for _, c := range counts {
		data = append(data, []string{
			c.Skill,
			utils.FormatCount(c.NumJobs),
			strconv.FormatFloat(c.PercentOfJobs, 'f', 1, 64),
		})
	}

	title := fmt.Sprintf("Skill frequency across %s jobs", utils.FormatCount(totalJobs))
	return render(w, title, data)
}

// PrintSkillSalaries renders the salary summary as a table
func PrintSkillSalaries(w io.Writer, report analysis.SalaryReport) error {
	switch {
	case report.Skipped:
		_, err := fmt.Fprintln(w, pterm.Yellow("No salary data available, salary analysis skipped"))
		return err
	case report.Insufficient:
		_, err := fmt.Fprintln(w, pterm.Yellow("Not enough salary samples per skill to compute salary insights"))
		return err
	}

	data := pterm.TableData{{"Skill", "Jobs with skill", "Avg salary with", "Avg salary without"}}
	for _, s := range report.Stats {
		data = append(data, []string{
			s.Skill,
			utils.FormatCount(s.JobsWithSkill),
			ColorizeSalary(mo.Some(s.AvgSalaryWithSkill)),
			ColorizeSalary(s.AvgSalaryWithoutSkill),
		})
	}

	title := fmt.Sprintf("Salary by skill across %s salaried jobs", utils.FormatCount(report.SalariedRows))
	return render(w, title, data)
}

func render(w io.Writer, title string, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintf(w, "%s\n%s\n", pterm.Bold.Sprint(title), table)
	return err
}
