package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDictionary(t *testing.T) {
	d := DefaultDictionary()

	require.Equal(t, 16, d.Len())
	names := d.Names()
	assert.Equal(t, "Excel", names[0])
	assert.Equal(t, "PowerPoint", names[len(names)-1])
	assert.Contains(t, names, "Power BI")
}

func TestNewDictionaryErrors(t *testing.T) {
	testCases := []struct {
		name string
		defs []Definition
	}{
		{name: "empty", defs: nil},
		{name: "blank name", defs: []Definition{{Name: " ", Patterns: []string{`\bx\b`}}}},
		{name: "duplicate", defs: []Definition{
			{Name: "SQL", Patterns: []string{`\bsql\b`}},
			{Name: "SQL", Patterns: []string{`\bmysql\b`}},
		}},
		{name: "no patterns", defs: []Definition{{Name: "Go"}}},
		{name: "bad regexp", defs: []Definition{{Name: "Go", Patterns: []string{`(`}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDictionary(tc.defs)
			require.Error(t, err)
		})
	}
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skills.yaml")
	content := `skills:
  - name: Go
    patterns:
      - '\bgolang\b'
      - '\bgo developer\b'
  - name: Kubernetes
    patterns: ['\bkubernetes\b', '\bk8s\b']
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	d, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, d.Names())

	features := NewTagger(d).Tag("senior golang engineer, k8s a plus")
	assert.True(t, features["Go"])
	assert.True(t, features["Kubernetes"])
}

func TestLoadDictionaryErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadDictionary(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	malformed := filepath.Join(dir, "malformed.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("skills: [name: : :"), 0600))
	_, err = LoadDictionary(malformed)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("skills: []\n"), 0600))
	_, err = LoadDictionary(empty)
	require.Error(t, err)
}
