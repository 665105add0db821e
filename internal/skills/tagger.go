package skills

import (
	"strings"

	"github.com/samber/mo"

	"github.com/fr4nk3nst1ner/skillsleuth/internal/models"
	"github.com/fr4nk3nst1ner/skillsleuth/internal/utils"
)

// ColumnPrefix is prepended to a skill name to form its feature column
const ColumnPrefix = "has_"

// FeatureRow maps each skill name to whether the text mentions it
type FeatureRow map[string]bool

// CleanText reduces any markup to text, lower-cases it and collapses Unicode
// whitespace to single spaces. None becomes "".
func CleanText(text mo.Option[string]) string {
	s, ok := text.Get()
	if !ok {
		return ""
	}
	s = strings.ToLower(utils.StripHTML(s))
	return strings.Join(strings.Fields(s), " ")
}

// CombinedText is the text a row is tagged on: cleaned title and description
func CombinedText(row models.JobRow) string {
	return CleanText(row.Title) + " " + CleanText(row.Description)
}

// Tagger matches text against a dictionary
type Tagger struct {
	dict *Dictionary
}

// NewTagger creates a tagger over dict
func NewTagger(dict *Dictionary) *Tagger {
	return &Tagger{dict: dict}
}

// Tag reports, for every skill, whether any of its patterns occurs in text
func (t *Tagger) Tag(text string) FeatureRow {
	text = strings.ToLower(text)
	row := make(FeatureRow, len(t.dict.skills))
	for _, skill := range t.dict.skills {
		found := false
		for _, re := range skill.Patterns {
			if re.MatchString(text) {
				found = true
				break
			}
		}
		row[skill.Name] = found
	}
	return row
}

// TagRows tags each row's combined text. The result is index-aligned with rows.
func (t *Tagger) TagRows(rows []models.JobRow) []FeatureRow {
	features := make([]FeatureRow, len(rows))
	for i, row := range rows {
		features[i] = t.Tag(CombinedText(row))
	}
	return features
}

// ColumnName is the feature column for a skill, e.g. "has_Power BI"
func ColumnName(skill string) string {
	return ColumnPrefix + skill
}
