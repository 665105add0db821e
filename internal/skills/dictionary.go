package skills

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Skill is a canonical skill name and the patterns that signal it
type Skill struct {
	Name     string
	Patterns []*regexp.Regexp
}

// Dictionary is an ordered, read-only set of skills with unique names
type Dictionary struct {
	skills []Skill
}

// Definition is the uncompiled form of a Skill, as found in a skills file
type Definition struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type dictionaryFile struct {
	Skills []Definition `yaml:"skills"`
}

// defaultDefinitions is the stock dictionary for data analyst postings.
// Patterns are lowercase and word-boundary anchored; text is lower-cased before matching.
var defaultDefinitions = []Definition{
	{Name: "Excel", Patterns: []string{`\bexcel\b`, `\bms excel\b`, `\bspreadsheet(s)?\b`}},
	{Name: "SQL", Patterns: []string{`\bsql\b`, `\bmysql\b`, `\bpostgresql\b`, `\bpostgres\b`, `\btsql\b`, `\bms sql\b`}},
	{Name: "Python", Patterns: []string{`\bpython\b`, `\bpandas\b`, `\bnumpy\b`, `\bscikit-learn\b`, `\bsklearn\b`}},
	{Name: "R", Patterns: []string{`\br language\b`, `\b r\b`, `\br studio\b`, `\br-studio\b`}},
	{Name: "Power BI", Patterns: []string{`\bpower bi\b`, `\bdax\b`}},
	{Name: "Tableau", Patterns: []string{`\btableau\b`}},
	{Name: "Looker", Patterns: []string{`\blooker\b`, `\blooker studio\b`, `\bdata studio\b`}},
	{Name: "Excel VBA", Patterns: []string{`\bvba\b`, `\bexcel vba\b`, `\bmacros?\b`}},
	{Name: "AWS", Patterns: []string{`\baws\b`, `\bamazon web services\b`}},
	{Name: "Azure", Patterns: []string{`\bazure\b`, `\bazure synapse\b`, `\bazure data factory\b`}},
	{Name: "GCP", Patterns: []string{`\bgcp\b`, `\bgoogle cloud\b`, `\bbigquery\b`}},
	{Name: "Statistics", Patterns: []string{`\bstatistics\b`, `\bstatistical\b`, `\bhypothesis testing\b`, `\bregression\b`}},
	{Name: "Machine Learning", Patterns: []string{`\bmachine learning\b`, `\bml models?\b`, `\bclassification\b`, `\bclustering\b`}},
	{Name: "Business Analysis", Patterns: []string{`\bbusiness analysis\b`, `\bbusiness analyst\b`, `\brequirements gathering\b`, `\bstakeholder(s)?\b`}},
	{Name: "Communication", Patterns: []string{`\bcommunication skills\b`, `\bstrong communicator\b`, `\bpresentation skills\b`}},
	{Name: "PowerPoint", Patterns: []string{`\bpowerpoint\b`, `\bpower point\b`, `\bslide deck(s)?\b`}},
}

// DefaultDictionary returns the built-in dictionary
func DefaultDictionary() *Dictionary {
	d, err := NewDictionary(defaultDefinitions)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDictionary compiles definitions, keeping their order
func NewDictionary(defs []Definition) (d *Dictionary, err error) {
	if len(defs) == 0 {
		err = errors.New("skill dictionary is empty")
		return d, err
	}

	seen := make(map[string]struct{}, len(defs))
	compiled := make([]Skill, 0, len(defs))
	for i, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			err = errors.Errorf("skill at index %d has no name", i)
			return d, err
		}
		if _, dup := seen[name]; dup {
			err = errors.Errorf("duplicate skill name: %s", name)
			return d, err
		}
		seen[name] = struct{}{}

		if len(def.Patterns) == 0 {
			err = errors.Errorf("skill %s has no patterns", name)
			return d, err
		}

		skill := Skill{Name: name, Patterns: make([]*regexp.Regexp, 0, len(def.Patterns))}
		for _, pat := range def.Patterns {
			var re *regexp.Regexp
			re, err = regexp.Compile(pat)
			if err != nil {
				err = errors.Wrapf(err, "skill %s: invalid pattern %q", name, pat)
				return d, err
			}
			skill.Patterns = append(skill.Patterns, re)
		}
		compiled = append(compiled, skill)
	}

	d = &Dictionary{skills: compiled}
	return d, err
}

// LoadDictionary reads a YAML skills file of the form
//
//	skills:
//	  - name: SQL
//	    patterns: ['\bsql\b', '\bmysql\b']
func LoadDictionary(path string) (d *Dictionary, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read skills file: %s", path)
		return d, err
	}

	var file dictionaryFile
	err = yaml.Unmarshal(data, &file)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse skills file: %s", path)
		return d, err
	}

	d, err = NewDictionary(file.Skills)
	if err != nil {
		err = errors.Wrapf(err, "invalid skills file: %s", path)
		return d, err
	}
	return d, err
}

// Names returns the skill names in dictionary order
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.skills))
	for i, s := range d.skills {
		names[i] = s.Name
	}
	return names
}

// Len is the number of skills
func (d *Dictionary) Len() int {
	return len(d.skills)
}
