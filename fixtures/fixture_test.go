package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestDefaultDocument(t *testing.T) {
	doc := Default()
	require.NoError(t, doc.Validate())
	assert.Equal(t, "text/markdown", doc.ContentType())
	assert.Contains(t, doc.Markdown, "## 🈶 Kanji : 火 - Feu")
	for _, field := range doc.Expect.Fields() {
		assert.True(t, Contains(doc.Markdown, field.Contains), "markdown does not contain %q", field.Contains)
	}
	for _, tag := range doc.Expect.Tags {
		assert.Contains(t, doc.Markdown, "#"+tag)
	}
}

func TestFieldsOmitsEmptyExpectations(t *testing.T) {
	fields := Expectation{Kanji: "水", Theme: "nature"}.Fields()
	assert.Equal(t, []ExpectedField{{"kanji", "水"}, {"theme", "nature"}}, fields)
}

func TestWriteTempAndCleanup(t *testing.T) {
	dir := t.TempDir()
	doc := Default()

	path, cleanup, err := doc.WriteTemp(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Markdown, string(data))

	path2, cleanup2, err := doc.WriteTemp(dir)
	require.NoError(t, err)
	assert.NotEqual(t, path, path2)

	cleanup()
	cleanup()
	cleanup2()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteTempFailsForMissingDirectory(t *testing.T) {
	_, _, err := Default().WriteTemp(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.yaml")
	content := `
name: water.md
markdown: |
  ## 🈶 Kanji : 水 - Eau
  - Tags : #kanji
expect:
  kanji: 水
  traductionFr: Eau
  tags: [kanji]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "water.md", doc.Name)
	assert.Equal(t, "水", doc.Expect.Kanji)
	assert.Equal(t, []string{"kanji"}, doc.Expect.Tags)
	assert.Contains(t, doc.Markdown, "水 - Eau")
}

func TestLoadDefaultsName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markdown: text\nexpect:\n  kanji: 水\n"), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test_kanji.md", doc.Name)
}

func TestLoadRejectsInvalidFixtures(t *testing.T) {
	for name, content := range map[string]string{
		"unknown field":  "markdown: text\nexpect:\n  kanji: 水\n  kanjj: typo\n",
		"no kanji":       "markdown: text\n",
		"no markdown":    "expect:\n  kanji: 水\n",
		"not markdown":   "name: notes.txt\nmarkdown: text\nexpect:\n  kanji: 水\n",
		"malformed YAML": "markdown: [unclosed\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestContainsNormalizesUnicode(t *testing.T) {
	decomposed := norm.NFD.String("ほ (ho), ぶ (bu)")
	require.NotEqual(t, "ぶ", norm.NFD.String("ぶ"))

	assert.True(t, Contains(decomposed, "ぶ (bu)"))
	assert.True(t, Equal(norm.NFD.String("ぶ"), "ぶ"))
	assert.False(t, Contains("ひ (hi)", "ほ"))
}

func TestMissingTags(t *testing.T) {
	assert.Empty(t, MissingTags([]string{"kanji", "JLPTN5"}, []string{"JLPTN5", "japonais", "kanji"}))
	assert.Equal(t, []string{"JLPTN5"}, MissingTags([]string{"kanji", "JLPTN5"}, []string{"kanji"}))
	assert.Equal(t, []string{"kanji"}, MissingTags([]string{"kanji"}, nil))
}
