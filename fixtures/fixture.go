// Package fixtures holds the markdown documents that tests upload and the word records the
// service is expected to derive from them.
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const defaultFileName = "test_kanji.md"

const defaultMarkdown = `## 🈶 Kanji : 火 - Feu

- Lecture *onyomi* : カ (ka)
- Lecture *kunyomi* : ひ (hi), ほ (ho)
- Traduction FR : Feu / Flamme
- Traduction EN : Fire / Flame
- Type : #nom
- Thème : #environnement
- Tags : #kanji #japonais #JLPTN5
`

// Document is a file to upload, along with what the service should extract from it.
type Document struct {
	// Name is the file name sent in the upload. The service only processes ".md" files.
	Name     string      `yaml:"name"`
	Markdown string      `yaml:"markdown"`
	Expect   Expectation `yaml:"expect"`
}

// Expectation is the expected shape of the word record derived from a Document. Every
// non-empty string field must be contained in the corresponding record field, and every
// tag must be present in the record's tags.
type Expectation struct {
	Kanji        string   `yaml:"kanji"`
	TraductionFr string   `yaml:"traductionFr"`
	Onyomi       string   `yaml:"onyomi"`
	Kunyomi      string   `yaml:"kunyomi"`
	TraductionEn string   `yaml:"traductionEn"`
	Type         string   `yaml:"type"`
	Theme        string   `yaml:"theme"`
	Tags         []string `yaml:"tags"`
}

// ExpectedField pairs a record property name with the text it must contain.
type ExpectedField struct {
	Name     string
	Contains string
}

// Default returns the built-in document for the kanji 火.
func Default() Document {
	return Document{
		Name:     defaultFileName,
		Markdown: defaultMarkdown,
		Expect: Expectation{
			Kanji:        "火",
			TraductionFr: "Feu",
			Onyomi:       "カ (ka)",
			Kunyomi:      "ひ (hi), ほ (ho)",
			TraductionEn: "Fire / Flame",
			Type:         "nom",
			Theme:        "environnement",
			Tags:         []string{"kanji", "japonais", "JLPTN5"},
		},
	}
}

// Load reads a Document from a YAML file. Unknown properties are rejected so that a typo
// in an expectation does not silently weaken the test.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read fixture: %w", err)
	}
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = defaultFileName
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("fixture %s: %w", path, err)
	}
	return doc, nil
}

func (d Document) Validate() error {
	if strings.TrimSpace(d.Markdown) == "" {
		return errors.New("markdown must not be empty")
	}
	if d.Expect.Kanji == "" {
		return errors.New("expect.kanji is required")
	}
	if !strings.HasSuffix(d.Name, ".md") {
		return fmt.Errorf("file name %q must end in .md", d.Name)
	}
	return nil
}

// WithName returns a copy of the document that will be uploaded under a different name.
func (d Document) WithName(name string) Document {
	d.Name = name
	return d
}

// ContentType is the MIME type sent for the file part.
func (d Document) ContentType() string {
	if strings.HasSuffix(d.Name, ".md") {
		return "text/markdown"
	}
	return "text/plain"
}

// WriteTemp writes the markdown to a new, uniquely named file in dir (or the system temp
// directory if dir is empty). The caller must call the returned cleanup function, which
// removes the file; it is safe to call more than once.
func (d Document) WriteTemp(dir string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp(dir, "fixture-*.md")
	if err != nil {
		return "", nil, fmt.Errorf("create fixture file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }
	if _, err := f.WriteString(d.Markdown); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write fixture file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write fixture file: %w", err)
	}
	return path, cleanup, nil
}

// Fields lists the expected string fields in a fixed order, omitting any that are empty.
func (e Expectation) Fields() []ExpectedField {
	all := []ExpectedField{
		{servicedef.FieldKanji, e.Kanji},
		{servicedef.FieldTraductionFr, e.TraductionFr},
		{servicedef.FieldOnyomi, e.Onyomi},
		{servicedef.FieldKunyomi, e.Kunyomi},
		{servicedef.FieldTraductionEn, e.TraductionEn},
		{servicedef.FieldType, e.Type},
		{servicedef.FieldTheme, e.Theme},
	}
	ret := make([]ExpectedField, 0, len(all))
	for _, f := range all {
		if f.Contains != "" {
			ret = append(ret, f)
		}
	}
	return ret
}

// Contains reports whether s contains substr after both are normalized to NFC, so that a
// service that stores decomposed kana still matches.
func Contains(s, substr string) bool {
	return strings.Contains(norm.NFC.String(s), norm.NFC.String(substr))
}

// Equal reports whether two strings are equal after NFC normalization.
func Equal(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}

// MissingTags returns the expected tags that are not in actual, in expected order.
func MissingTags(expected, actual []string) []string {
	var missing []string
	for _, want := range expected {
		found := false
		for _, have := range actual {
			if Equal(want, have) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}
